package contract

import (
	"encoding/json"
	"fmt"
	"tourtrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Emergency Alert Operations ---

// InitializeAlertRegistry creates the alert family's singleton registry and
// records the caller as its authority. Fails if already initialized.
func (s *TourtraceSmartContract) InitializeAlertRegistry(ctx contractapi.TransactionContextInterface) error {
	_, err := s.initializeRegistry(ctx, alertFamily)
	return err
}

// TriggerAlert raises a new emergency alert on behalf of the caller. The
// alert receives the next sequence number as its ID and starts active; the
// registry counter is advanced in the same transaction.
func (s *TourtraceSmartContract) TriggerAlert(ctx contractapi.TransactionContextInterface,
	category int, location string, description string) (*model.Alert, error) {

	reporter, err := s.currentCallerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("TriggerAlert: failed to get caller identity: %w", err)
	}

	if category < 0 || category > int(model.CategoryAnomaly) {
		return nil, fmt.Errorf("alert category %d is not one of PANIC(0), GEOFENCE(1), ANOMALY(2): %w", category, ErrInvalidInput)
	}
	if err := s.validateRequiredString(location, "location", maxLocationLength); err != nil {
		return nil, err
	}
	if err := s.validateOptionalString(description, "description", maxDescriptionLength); err != nil {
		return nil, err
	}

	registry, err := s.getRegistry(ctx, alertFamily)
	if err != nil {
		return nil, fmt.Errorf("TriggerAlert: %w", err)
	}
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("TriggerAlert: %w", err)
	}

	alertID := nextSequence(registry)
	alertKey, err := s.createAlertKey(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("TriggerAlert: failed to create key for alert %d: %w", alertID, err)
	}
	existing, err := ctx.GetStub().GetState(alertKey)
	if err != nil {
		return nil, fmt.Errorf("TriggerAlert: failed to check for existing alert %d: %w", alertID, err)
	}
	if existing != nil {
		// The counter never hands out the same number twice, so an occupied
		// derived address means the counter and the ledger disagree.
		return nil, fmt.Errorf("alert %d already exists at its derived address: %w", alertID, ErrConsistencyViolation)
	}

	alert := model.Alert{
		ObjectType:  alertObjectType,
		AlertID:     alertID,
		Reporter:    reporter,
		Category:    model.AlertCategory(category),
		Location:    location,
		Description: description,
		CreatedAt:   now,
		Active:      true,
	}
	alertBytes, err := json.Marshal(alert)
	if err != nil {
		return nil, fmt.Errorf("TriggerAlert: failed to marshal alert %d: %w", alertID, err)
	}
	if err := ctx.GetStub().PutState(alertKey, alertBytes); err != nil {
		return nil, fmt.Errorf("TriggerAlert: failed to save alert %d to ledger: %w", alertID, err)
	}
	if err := s.putRegistry(ctx, registry); err != nil {
		return nil, fmt.Errorf("TriggerAlert: %w", err)
	}

	s.emitEvent(ctx, eventAlertTriggered, model.AlertTriggeredEvent{
		AlertID:     alertID,
		Reporter:    reporter,
		Category:    alert.Category,
		Location:    location,
		Description: description,
		CreatedAt:   now,
	})
	logger.Infof("Alert %d (%s) triggered by '%s' at '%s'", alertID, alert.Category, reporter, location)
	return &alert, nil
}

// ResolveAlert marks an active alert resolved. Only the original reporter or
// the family authority may resolve; the transition is one-way and the alert
// remains on the ledger as a historical record.
func (s *TourtraceSmartContract) ResolveAlert(ctx contractapi.TransactionContextInterface, alertID uint64) (*model.Alert, error) {
	caller, err := s.currentCallerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("ResolveAlert: failed to get caller identity: %w", err)
	}
	registry, err := s.getRegistry(ctx, alertFamily)
	if err != nil {
		return nil, fmt.Errorf("ResolveAlert: %w", err)
	}

	// Fresh read of the latest persisted state; preconditions are checked
	// against this read so racing resolvers cannot both succeed.
	alert, err := s.getAlertByID(ctx, alertID)
	if err != nil {
		return nil, err
	}

	if caller != alert.Reporter && caller != registry.Authority {
		return nil, fmt.Errorf("caller '%s' is neither the reporter of alert %d nor the alert authority: %w", caller, alertID, ErrUnauthorized)
	}
	if !alert.Active {
		return nil, fmt.Errorf("alert %d is already resolved: %w", alertID, ErrAlreadyTerminal)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("ResolveAlert: %w", err)
	}

	alert.Active = false
	alertKey, err := s.createAlertKey(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("ResolveAlert: failed to create key for alert %d: %w", alertID, err)
	}
	alertBytes, err := json.Marshal(alert)
	if err != nil {
		return nil, fmt.Errorf("ResolveAlert: failed to marshal alert %d: %w", alertID, err)
	}
	if err := ctx.GetStub().PutState(alertKey, alertBytes); err != nil {
		return nil, fmt.Errorf("ResolveAlert: failed to save alert %d to ledger: %w", alertID, err)
	}

	s.emitEvent(ctx, eventAlertResolved, model.AlertResolvedEvent{
		AlertID:    alertID,
		ResolvedBy: caller,
		ResolvedAt: now,
	})
	logger.Infof("Alert %d resolved by '%s'", alertID, caller)
	return alert, nil
}
