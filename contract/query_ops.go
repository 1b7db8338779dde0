package contract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"tourtrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Query Functions ---

// getAlertByID is an internal helper to retrieve and unmarshal an alert.
func (s *TourtraceSmartContract) getAlertByID(ctx contractapi.TransactionContextInterface, alertID uint64) (*model.Alert, error) {
	alertKey, err := s.createAlertKey(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("getAlertByID: failed to create key for alert %d: %w", alertID, err)
	}
	alertBytes, err := ctx.GetStub().GetState(alertKey)
	if err != nil {
		return nil, fmt.Errorf("getAlertByID: failed to read alert %d from ledger: %w", alertID, err)
	}
	if alertBytes == nil {
		return nil, fmt.Errorf("alert %d does not exist: %w", alertID, ErrNotFound)
	}

	var alert model.Alert
	if err := json.Unmarshal(alertBytes, &alert); err != nil {
		return nil, fmt.Errorf("getAlertByID: failed to unmarshal alert %d: %w", alertID, err)
	}
	return &alert, nil
}

// getCredentialByID is an internal helper to retrieve and unmarshal a credential.
func (s *TourtraceSmartContract) getCredentialByID(ctx contractapi.TransactionContextInterface, credentialID uint64) (*model.AccessCredential, error) {
	credentialKey, err := s.createCredentialKey(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("getCredentialByID: failed to create key for credential %d: %w", credentialID, err)
	}
	credentialBytes, err := ctx.GetStub().GetState(credentialKey)
	if err != nil {
		return nil, fmt.Errorf("getCredentialByID: failed to read credential %d from ledger: %w", credentialID, err)
	}
	if credentialBytes == nil {
		return nil, fmt.Errorf("credential %d does not exist: %w", credentialID, ErrNotFound)
	}

	var credential model.AccessCredential
	if err := json.Unmarshal(credentialBytes, &credential); err != nil {
		return nil, fmt.Errorf("getCredentialByID: failed to unmarshal credential %d: %w", credentialID, err)
	}
	return &credential, nil
}

// GetAlert returns a single alert by ID.
func (s *TourtraceSmartContract) GetAlert(ctx contractapi.TransactionContextInterface, alertID uint64) (*model.Alert, error) {
	logger.Debugf("GetAlert: querying alert %d", alertID)
	return s.getAlertByID(ctx, alertID)
}

// GetCredential returns a single credential by ID.
func (s *TourtraceSmartContract) GetCredential(ctx contractapi.TransactionContextInterface, credentialID uint64) (*model.AccessCredential, error) {
	logger.Debugf("GetCredential: querying credential %d", credentialID)
	return s.getCredentialByID(ctx, credentialID)
}

// GetAlertRegistry returns the alert family's singleton registry.
func (s *TourtraceSmartContract) GetAlertRegistry(ctx contractapi.TransactionContextInterface) (*model.Registry, error) {
	return s.getRegistry(ctx, alertFamily)
}

// GetCredentialRegistry returns the credential family's singleton registry.
func (s *TourtraceSmartContract) GetCredentialRegistry(ctx contractapi.TransactionContextInterface) (*model.Registry, error) {
	return s.getRegistry(ctx, credentialFamily)
}

// parsePageSize parses and caps a page size argument, falling back to the
// default on garbage input.
func parsePageSize(pageSizeStr string) int32 {
	pageSize, err := strconv.ParseInt(pageSizeStr, 10, 32)
	if err != nil || pageSize <= 0 {
		return defaultPageSize
	}
	if pageSize > maxPageSize {
		return maxPageSize
	}
	return int32(pageSize)
}

// GetAllAlerts returns a page of alerts in ID order.
func (s *TourtraceSmartContract) GetAllAlerts(ctx contractapi.TransactionContextInterface, pageSizeStr string, bookmark string) (*model.PaginatedAlertResponse, error) {
	pageSize := parsePageSize(pageSizeStr)
	logger.Debugf("GetAllAlerts: pageSize %d, bookmark '%s'", pageSize, bookmark)

	resultsIterator, metadata, err := ctx.GetStub().GetStateByPartialCompositeKeyWithPagination(alertObjectType, []string{}, pageSize, bookmark)
	if err != nil {
		return nil, fmt.Errorf("GetAllAlerts: failed to get alerts iterator: %w", err)
	}
	defer resultsIterator.Close()

	alerts := []*model.Alert{}
	fetchedCount := int32(0)
	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			logger.Warningf("GetAllAlerts: error iterating results: %v. Skipping.", iterErr)
			continue
		}
		var alert model.Alert
		if err := json.Unmarshal(queryResponse.Value, &alert); err != nil {
			logger.Warningf("GetAllAlerts: error unmarshalling alert for key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		alerts = append(alerts, &alert)
		fetchedCount++
	}

	return &model.PaginatedAlertResponse{
		Alerts:       alerts,
		NextBookmark: metadata.GetBookmark(),
		FetchedCount: fetchedCount,
	}, nil
}

// GetActiveAlerts returns every alert that has not yet been resolved.
// Full scan; dispatch dashboards poll this, alert volume is bounded by
// traveler count.
func (s *TourtraceSmartContract) GetActiveAlerts(ctx contractapi.TransactionContextInterface) ([]*model.Alert, error) {
	logger.Debug("GetActiveAlerts: scanning for active alerts")

	resultsIterator, err := ctx.GetStub().GetStateByPartialCompositeKey(alertObjectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("GetActiveAlerts: failed to get alerts iterator: %w", err)
	}
	defer resultsIterator.Close()

	alerts := []*model.Alert{}
	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			logger.Warningf("GetActiveAlerts: error iterating results: %v. Skipping.", iterErr)
			continue
		}
		var alert model.Alert
		if err := json.Unmarshal(queryResponse.Value, &alert); err != nil {
			logger.Warningf("GetActiveAlerts: error unmarshalling alert for key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		if alert.Active {
			alerts = append(alerts, &alert)
		}
	}
	return alerts, nil
}

// GetAllCredentials returns a page of credentials in ID order.
func (s *TourtraceSmartContract) GetAllCredentials(ctx contractapi.TransactionContextInterface, pageSizeStr string, bookmark string) (*model.PaginatedCredentialResponse, error) {
	pageSize := parsePageSize(pageSizeStr)
	logger.Debugf("GetAllCredentials: pageSize %d, bookmark '%s'", pageSize, bookmark)

	resultsIterator, metadata, err := ctx.GetStub().GetStateByPartialCompositeKeyWithPagination(credentialObjectType, []string{}, pageSize, bookmark)
	if err != nil {
		return nil, fmt.Errorf("GetAllCredentials: failed to get credentials iterator: %w", err)
	}
	defer resultsIterator.Close()

	credentials := []*model.AccessCredential{}
	fetchedCount := int32(0)
	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			logger.Warningf("GetAllCredentials: error iterating results: %v. Skipping.", iterErr)
			continue
		}
		var credential model.AccessCredential
		if err := json.Unmarshal(queryResponse.Value, &credential); err != nil {
			logger.Warningf("GetAllCredentials: error unmarshalling credential for key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		credentials = append(credentials, &credential)
		fetchedCount++
	}

	return &model.PaginatedCredentialResponse{
		Credentials:  credentials,
		NextBookmark: metadata.GetBookmark(),
		FetchedCount: fetchedCount,
	}, nil
}

// GetCredentialsByZone returns all credentials minted for a zone, valid or
// not. Gate services filter further with VerifyAccess.
func (s *TourtraceSmartContract) GetCredentialsByZone(ctx contractapi.TransactionContextInterface, zoneID string) ([]*model.AccessCredential, error) {
	if err := s.validateRequiredString(zoneID, "zoneId", maxZoneIDLength); err != nil {
		return nil, err
	}
	logger.Debugf("GetCredentialsByZone: scanning credentials for zone '%s'", zoneID)

	resultsIterator, err := ctx.GetStub().GetStateByPartialCompositeKey(credentialObjectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("GetCredentialsByZone: failed to get credentials iterator: %w", err)
	}
	defer resultsIterator.Close()

	credentials := []*model.AccessCredential{}
	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			logger.Warningf("GetCredentialsByZone: error iterating results: %v. Skipping.", iterErr)
			continue
		}
		var credential model.AccessCredential
		if err := json.Unmarshal(queryResponse.Value, &credential); err != nil {
			logger.Warningf("GetCredentialsByZone: error unmarshalling credential for key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		if credential.ZoneID == zoneID {
			credentials = append(credentials, &credential)
		}
	}
	return credentials, nil
}

// GetAlertHistory returns the full write history of an alert so off-chain
// indexers can reconstruct its lifecycle without replaying events.
func (s *TourtraceSmartContract) GetAlertHistory(ctx contractapi.TransactionContextInterface, alertID uint64) ([]model.HistoryEntry, error) {
	alertKey, err := s.createAlertKey(ctx, alertID)
	if err != nil {
		return nil, fmt.Errorf("GetAlertHistory: failed to create key for alert %d: %w", alertID, err)
	}
	historyIterator, err := ctx.GetStub().GetHistoryForKey(alertKey)
	if err != nil {
		return nil, fmt.Errorf("GetAlertHistory: failed to get history for alert %d: %w", alertID, err)
	}
	defer historyIterator.Close()

	entries := []model.HistoryEntry{}
	for historyIterator.HasNext() {
		historyItem, iterErr := historyIterator.Next()
		if iterErr != nil {
			logger.Warningf("GetAlertHistory: error iterating history of alert %d: %v. Skipping entry.", alertID, iterErr)
			continue
		}

		action := "DELETED"
		if !historyItem.IsDelete {
			var pastState model.Alert
			if err := json.Unmarshal(historyItem.Value, &pastState); err != nil {
				logger.Warningf("GetAlertHistory: error unmarshalling past state of alert %d: %v. Skipping entry.", alertID, err)
				continue
			}
			if pastState.Active {
				action = "ACTIVE"
			} else {
				action = "RESOLVED"
			}
		}

		entries = append(entries, model.HistoryEntry{
			TxID:      historyItem.TxId,
			Timestamp: historyItem.Timestamp.AsTime(),
			IsDelete:  historyItem.IsDelete,
			Value:     string(historyItem.Value),
			Action:    action,
		})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("alert %d has no history: %w", alertID, ErrNotFound)
	}
	return entries, nil
}
