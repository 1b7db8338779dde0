package contract

import (
	"encoding/json"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// Chaincode event names. Off-chain watchers (rescue dispatch, gate checkers)
// subscribe to these; names are part of the external interface and never
// change.
const (
	eventAlertTriggered        = "AlertTriggered"
	eventAlertResolved         = "AlertResolved"
	eventCredentialMinted      = "CredentialMinted"
	eventAccessVerified        = "AccessVerified"
	eventPassRevoked           = "PassRevoked"
	eventMetadataUpdated       = "MetadataUpdated"
	eventEmergencyContactAdded = "EmergencyContactAdded"
)

// emitEvent sets a chaincode event with a JSON payload. Exactly one event is
// emitted per accepted transition, after all state writes for the operation
// have been staged, so an event never describes a rejected mutation.
func (s *TourtraceSmartContract) emitEvent(ctx contractapi.TransactionContextInterface, eventName string, payload interface{}) {
	eventBytes, err := json.Marshal(payload)
	if err != nil {
		logger.Warningf("emitEvent: failed to marshal payload for event '%s': %v", eventName, err)
		return
	}
	if err := ctx.GetStub().SetEvent(eventName, eventBytes); err != nil {
		logger.Warningf("emitEvent: failed to set event '%s': %v", eventName, err)
	}
}
