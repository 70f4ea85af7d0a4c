package teif

import (
	"github.com/beevik/etree"
	"github.com/ttnlab/teif-engine/internal/domain"
	"github.com/ttnlab/teif-engine/internal/domain/entity"
	"github.com/ttnlab/teif-engine/pkg/teif"
)

// BuildInvoiceHeader construit la section InvoiceHeader : identifiants
// d'acheminement du message. L'émetteur est obligatoire; quand son type est
// I-01 (matricule fiscal) la grammaire positionnelle est contrôlée.
//
// "MessageRecieverIdentifier" garde l'orthographe historique du schéma TTN.
func BuildInvoiceHeader(h entity.Header) (*etree.Element, error) {
	const section = "InvoiceHeader"

	senderType := h.SenderType
	if senderType == "" {
		senderType = teif.IdentifierTypeMatricule
	}
	if err := requireCode(section, "MessageSenderIdentifier.type", teif.TableIdentifierType, senderType); err != nil {
		return nil, err
	}
	if h.SenderIdentifier == "" {
		return nil, domain.NewValidationError(section, "MessageSenderIdentifier", "identifiant émetteur obligatoire")
	}
	if senderType == teif.IdentifierTypeMatricule {
		if err := teif.ValidateMatriculeFiscal(h.SenderIdentifier); err != nil {
			return nil, domain.WrapValidationError(section, "MessageSenderIdentifier", err)
		}
	}

	el := etree.NewElement(section)
	sender := addText(el, "MessageSenderIdentifier", h.SenderIdentifier)
	sender.CreateAttr("type", senderType)

	if h.ReceiverIdentifier != "" {
		receiverType := h.ReceiverType
		if receiverType == "" {
			receiverType = teif.IdentifierTypeMatricule
		}
		if err := requireCode(section, "MessageRecieverIdentifier.type", teif.TableIdentifierType, receiverType); err != nil {
			return nil, err
		}
		if receiverType == teif.IdentifierTypeMatricule {
			if err := teif.ValidateMatriculeFiscal(h.ReceiverIdentifier); err != nil {
				return nil, domain.WrapValidationError(section, "MessageRecieverIdentifier", err)
			}
		}
		receiver := addText(el, "MessageRecieverIdentifier", h.ReceiverIdentifier)
		receiver.CreateAttr("type", receiverType)
	}
	return el, nil
}

// BuildBgm construit la section Bgm : identification du document (numéro chez
// l'émetteur et type référencé I-1).
func BuildBgm(typeCode, identifier string) (*etree.Element, error) {
	const section = "Bgm"
	if identifier == "" {
		return nil, domain.NewValidationError(section, "DocumentIdentifier", "numéro de document obligatoire")
	}
	if err := requireCode(section, "DocumentType.code", teif.TableDocumentType, typeCode); err != nil {
		return nil, err
	}
	el := etree.NewElement(section)
	addText(el, "DocumentIdentifier", identifier)
	dt := addText(el, "DocumentType", teif.Describe(teif.TableDocumentType, typeCode))
	dt.CreateAttr("code", typeCode)
	return el, nil
}

// BuildDtm construit la section Dtm. Liste vide : section omise (nil, nil).
func BuildDtm(dates []entity.DateInfo) (*etree.Element, error) {
	const section = "Dtm"
	if len(dates) == 0 {
		return nil, nil
	}
	el := etree.NewElement(section)
	for _, d := range dates {
		if err := requireCode(section, "DateText.functionCode", teif.TableDateFunction, d.FunctionCode); err != nil {
			return nil, err
		}
		text, err := formatDate(section, d)
		if err != nil {
			return nil, err
		}
		dt := addText(el, "DateText", text)
		dt.CreateAttr("format", d.Format)
		dt.CreateAttr("functionCode", d.FunctionCode)
	}
	return el, nil
}
