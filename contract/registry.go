package contract

import (
	"encoding/json"
	"fmt"
	"tourtrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// registryFamily names a record family with its own singleton registry.
type registryFamily string

const (
	alertFamily      registryFamily = "alert"
	credentialFamily registryFamily = "credential"
)

// initializeRegistry creates the singleton registry for a family if and only
// if it does not already exist, recording the caller as the family's
// authority and starting the sequence counter at zero.
func (s *TourtraceSmartContract) initializeRegistry(ctx contractapi.TransactionContextInterface, family registryFamily) (*model.Registry, error) {
	caller, err := s.currentCallerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializeRegistry: failed to get caller identity: %w", err)
	}

	registryKey, err := s.createRegistryKey(ctx, family)
	if err != nil {
		return nil, fmt.Errorf("initializeRegistry: failed to create key for '%s' registry: %w", family, err)
	}
	existing, err := ctx.GetStub().GetState(registryKey)
	if err != nil {
		return nil, fmt.Errorf("initializeRegistry: failed to check for existing '%s' registry: %w", family, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("'%s' registry: %w", family, ErrAlreadyInitialized)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return nil, err
	}

	registry := model.Registry{
		ObjectType:      registryObjectType,
		Family:          string(family),
		Authority:       caller,
		SequenceCounter: 0,
		CreatedAt:       now,
		LastUpdatedAt:   now,
	}
	if err := s.putRegistry(ctx, &registry); err != nil {
		return nil, err
	}

	logger.Infof("'%s' registry initialized with authority '%s'", family, caller)
	return &registry, nil
}

// getRegistry retrieves a family's singleton registry from the ledger.
func (s *TourtraceSmartContract) getRegistry(ctx contractapi.TransactionContextInterface, family registryFamily) (*model.Registry, error) {
	registryKey, err := s.createRegistryKey(ctx, family)
	if err != nil {
		return nil, fmt.Errorf("getRegistry: failed to create key for '%s' registry: %w", family, err)
	}
	registryBytes, err := ctx.GetStub().GetState(registryKey)
	if err != nil {
		return nil, fmt.Errorf("getRegistry: failed to read '%s' registry from ledger: %w", family, err)
	}
	if registryBytes == nil {
		return nil, fmt.Errorf("'%s' registry does not exist, call the initialize operation first: %w", family, ErrNotFound)
	}

	var registry model.Registry
	if err := json.Unmarshal(registryBytes, &registry); err != nil {
		return nil, fmt.Errorf("getRegistry: failed to unmarshal '%s' registry: %w", family, err)
	}
	return &registry, nil
}

// putRegistry persists the registry singleton at its fixed address.
func (s *TourtraceSmartContract) putRegistry(ctx contractapi.TransactionContextInterface, registry *model.Registry) error {
	registryKey, err := s.createRegistryKey(ctx, registryFamily(registry.Family))
	if err != nil {
		return fmt.Errorf("putRegistry: failed to create key for '%s' registry: %w", registry.Family, err)
	}
	registryBytes, err := json.Marshal(registry)
	if err != nil {
		return fmt.Errorf("putRegistry: failed to marshal '%s' registry: %w", registry.Family, err)
	}
	if err := ctx.GetStub().PutState(registryKey, registryBytes); err != nil {
		return fmt.Errorf("putRegistry: failed to save '%s' registry to ledger: %w", registry.Family, err)
	}
	return nil
}

// nextSequence hands out the next natural key for the family and advances the
// counter on the in-memory registry. The caller must persist the updated
// registry in the same transaction as the new record's creation write; the
// counter is only ever a source of fresh unique keys, never a count of
// existing records.
func nextSequence(registry *model.Registry) uint64 {
	id := registry.SequenceCounter
	registry.SequenceCounter++
	return id
}

// requireAuthority fails unless the caller is the family's recorded
// authority. Deliberately a flat field comparison, not a role system.
func (s *TourtraceSmartContract) requireAuthority(registry *model.Registry, caller string) error {
	if caller != registry.Authority {
		return fmt.Errorf("caller '%s' is not the '%s' registry authority: %w", caller, registry.Family, ErrUnauthorized)
	}
	return nil
}
