package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// Object types used as composite key namespaces, also usable as 'objectType'
// selectors in CouchDB queries. The composite key of (namespace, natural key)
// is the record's one deterministic address: same inputs always yield the
// same key, distinct namespaces can never collide.
const (
	registryObjectType   = "Registry"
	alertObjectType      = "Alert"
	credentialObjectType = "AccessCredential"
	contactObjectType    = "EmergencyContact"
)

// sequenceKeyAttr renders a sequence number as a fixed-width decimal so that
// lexicographic key order matches numeric order for range scans.
func sequenceKeyAttr(id uint64) string {
	return fmt.Sprintf("%020d", id)
}

func (s *TourtraceSmartContract) createRegistryKey(ctx contractapi.TransactionContextInterface, family registryFamily) (string, error) {
	return ctx.GetStub().CreateCompositeKey(registryObjectType, []string{string(family)})
}

func (s *TourtraceSmartContract) createAlertKey(ctx contractapi.TransactionContextInterface, alertID uint64) (string, error) {
	return ctx.GetStub().CreateCompositeKey(alertObjectType, []string{sequenceKeyAttr(alertID)})
}

func (s *TourtraceSmartContract) createCredentialKey(ctx contractapi.TransactionContextInterface, credentialID uint64) (string, error) {
	return ctx.GetStub().CreateCompositeKey(credentialObjectType, []string{sequenceKeyAttr(credentialID)})
}

func (s *TourtraceSmartContract) createContactKey(ctx contractapi.TransactionContextInterface, contactType string) (string, error) {
	contactType = strings.TrimSpace(contactType)
	if contactType == "" {
		return "", errors.New("contactType cannot be empty")
	}
	return ctx.GetStub().CreateCompositeKey(contactObjectType, []string{contactType})
}
