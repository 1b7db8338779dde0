package contract

import (
	"encoding/json"
	"fmt"
	"tourtrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Emergency Contact Directory ---
//
// Dispatch contacts ("police", "medical", ...) are registered by the alert
// authority at fixed per-type addresses so off-chain watchers can look up who
// to notify for a given kind of emergency.

// RegisterEmergencyContact records the dispatch address for a contact type.
// Authority only; a contact type can be registered once.
func (s *TourtraceSmartContract) RegisterEmergencyContact(ctx contractapi.TransactionContextInterface,
	contactType string, contactAddress string) (*model.EmergencyContact, error) {

	caller, err := s.currentCallerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("RegisterEmergencyContact: failed to get caller identity: %w", err)
	}
	registry, err := s.getRegistry(ctx, alertFamily)
	if err != nil {
		return nil, fmt.Errorf("RegisterEmergencyContact: %w", err)
	}
	if err := s.requireAuthority(registry, caller); err != nil {
		return nil, err
	}

	if err := s.validateRequiredString(contactType, "contactType", maxContactTypeLength); err != nil {
		return nil, err
	}
	if err := s.validateRequiredString(contactAddress, "contactAddress", maxLocationLength); err != nil {
		return nil, err
	}

	contactKey, err := s.createContactKey(ctx, contactType)
	if err != nil {
		return nil, fmt.Errorf("RegisterEmergencyContact: failed to create key for contact '%s': %w", contactType, err)
	}
	existing, err := ctx.GetStub().GetState(contactKey)
	if err != nil {
		return nil, fmt.Errorf("RegisterEmergencyContact: failed to check for existing contact '%s': %w", contactType, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("emergency contact '%s': %w", contactType, ErrAlreadyInitialized)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("RegisterEmergencyContact: %w", err)
	}

	contact := model.EmergencyContact{
		ObjectType:     contactObjectType,
		ContactType:    contactType,
		ContactAddress: contactAddress,
		AddedBy:        caller,
		AddedAt:        now,
	}
	contactBytes, err := json.Marshal(contact)
	if err != nil {
		return nil, fmt.Errorf("RegisterEmergencyContact: failed to marshal contact '%s': %w", contactType, err)
	}
	if err := ctx.GetStub().PutState(contactKey, contactBytes); err != nil {
		return nil, fmt.Errorf("RegisterEmergencyContact: failed to save contact '%s' to ledger: %w", contactType, err)
	}

	s.emitEvent(ctx, eventEmergencyContactAdded, model.EmergencyContactAddedEvent{
		ContactType:    contactType,
		ContactAddress: contactAddress,
		AddedBy:        caller,
		AddedAt:        now,
	})
	logger.Infof("Emergency contact '%s' registered at '%s'", contactType, contactAddress)
	return &contact, nil
}

// GetEmergencyContact returns the dispatch record for a contact type.
func (s *TourtraceSmartContract) GetEmergencyContact(ctx contractapi.TransactionContextInterface, contactType string) (*model.EmergencyContact, error) {
	if err := s.validateRequiredString(contactType, "contactType", maxContactTypeLength); err != nil {
		return nil, err
	}
	contactKey, err := s.createContactKey(ctx, contactType)
	if err != nil {
		return nil, fmt.Errorf("GetEmergencyContact: failed to create key for contact '%s': %w", contactType, err)
	}
	contactBytes, err := ctx.GetStub().GetState(contactKey)
	if err != nil {
		return nil, fmt.Errorf("GetEmergencyContact: failed to read contact '%s' from ledger: %w", contactType, err)
	}
	if contactBytes == nil {
		return nil, fmt.Errorf("emergency contact '%s' does not exist: %w", contactType, ErrNotFound)
	}

	var contact model.EmergencyContact
	if err := json.Unmarshal(contactBytes, &contact); err != nil {
		return nil, fmt.Errorf("GetEmergencyContact: failed to unmarshal contact '%s': %w", contactType, err)
	}
	return &contact, nil
}

// ListEmergencyContacts returns all registered dispatch contacts.
func (s *TourtraceSmartContract) ListEmergencyContacts(ctx contractapi.TransactionContextInterface) ([]*model.EmergencyContact, error) {
	logger.Debug("ListEmergencyContacts: scanning contact directory")

	resultsIterator, err := ctx.GetStub().GetStateByPartialCompositeKey(contactObjectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("ListEmergencyContacts: failed to get contacts iterator: %w", err)
	}
	defer resultsIterator.Close()

	contacts := []*model.EmergencyContact{}
	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			logger.Warningf("ListEmergencyContacts: failed to get next contact from iterator: %v. Skipping.", iterErr)
			continue
		}
		var contact model.EmergencyContact
		if err := json.Unmarshal(queryResponse.Value, &contact); err != nil {
			logger.Warningf("ListEmergencyContacts: failed to unmarshal contact for key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		contacts = append(contacts, &contact)
	}
	return contacts, nil
}
