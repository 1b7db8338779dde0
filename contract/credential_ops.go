package contract

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"tourtrace/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Lifecycle: Access Credential Operations ---

// InitializeCredentialRegistry creates the credential family's singleton
// registry and records the caller as its authority. Fails if already
// initialized.
func (s *TourtraceSmartContract) InitializeCredentialRegistry(ctx contractapi.TransactionContextInterface) error {
	_, err := s.initializeRegistry(ctx, credentialFamily)
	return err
}

// MintAccessCredential mints a time-bound zone access credential for the
// caller. subjectIDHash is the hex encoding of the 32-byte binding to the
// holder's external identity; expiryTimestamp (unix seconds) must be strictly
// in the future at mint time and is immutable thereafter.
func (s *TourtraceSmartContract) MintAccessCredential(ctx contractapi.TransactionContextInterface,
	subjectIDHash string, zoneID string, expiryTimestamp int64, metadataURI string) (*model.AccessCredential, error) {

	holder, err := s.currentCallerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("MintAccessCredential: failed to get caller identity: %w", err)
	}

	decoded, err := hex.DecodeString(subjectIDHash)
	if err != nil {
		return nil, fmt.Errorf("subjectIdHash is not valid hex: %w", ErrInvalidInput)
	}
	if len(decoded) != subjectIDHashBytes {
		return nil, fmt.Errorf("subjectIdHash must encode exactly %d bytes, got %d: %w", subjectIDHashBytes, len(decoded), ErrInvalidInput)
	}
	if err := s.validateRequiredString(zoneID, "zoneId", maxZoneIDLength); err != nil {
		return nil, err
	}
	if err := s.validateOptionalString(metadataURI, "metadataUri", maxMetadataURILength); err != nil {
		return nil, err
	}

	registry, err := s.getRegistry(ctx, credentialFamily)
	if err != nil {
		return nil, fmt.Errorf("MintAccessCredential: %w", err)
	}
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("MintAccessCredential: %w", err)
	}
	if expiryTimestamp <= now.Unix() {
		return nil, fmt.Errorf("expiryTimestamp %d is not in the future (now %d): %w", expiryTimestamp, now.Unix(), ErrInvalidInput)
	}

	credentialID := nextSequence(registry)
	credentialKey, err := s.createCredentialKey(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("MintAccessCredential: failed to create key for credential %d: %w", credentialID, err)
	}
	existing, err := ctx.GetStub().GetState(credentialKey)
	if err != nil {
		return nil, fmt.Errorf("MintAccessCredential: failed to check for existing credential %d: %w", credentialID, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("credential %d already exists at its derived address: %w", credentialID, ErrConsistencyViolation)
	}

	credential := model.AccessCredential{
		ObjectType:      credentialObjectType,
		CredentialID:    credentialID,
		SubjectIDHash:   subjectIDHash,
		ZoneID:          zoneID,
		ExpiryTimestamp: expiryTimestamp,
		Holder:          holder,
		Valid:           true,
		MetadataURI:     metadataURI,
		MintedAt:        now,
	}
	credentialBytes, err := json.Marshal(credential)
	if err != nil {
		return nil, fmt.Errorf("MintAccessCredential: failed to marshal credential %d: %w", credentialID, err)
	}
	if err := ctx.GetStub().PutState(credentialKey, credentialBytes); err != nil {
		return nil, fmt.Errorf("MintAccessCredential: failed to save credential %d to ledger: %w", credentialID, err)
	}
	if err := s.putRegistry(ctx, registry); err != nil {
		return nil, fmt.Errorf("MintAccessCredential: %w", err)
	}

	s.emitEvent(ctx, eventCredentialMinted, model.CredentialMintedEvent{
		CredentialID:    credentialID,
		Holder:          holder,
		SubjectIDHash:   subjectIDHash,
		ZoneID:          zoneID,
		ExpiryTimestamp: expiryTimestamp,
		MetadataURI:     metadataURI,
		MintedAt:        now,
	})
	logger.Infof("Credential %d minted for holder '%s', zone '%s', expires %d", credentialID, holder, zoneID, expiryTimestamp)
	return &credential, nil
}

// VerifyAccess checks whether a credential currently grants the expected
// holder entry to the expected zone. Expiry is evaluated against the
// transaction timestamp here, at read time; it is never stored. The check
// never mutates the credential, but every attempt, including failed ones,
// emits an AccessVerified event as part of the auditable history.
func (s *TourtraceSmartContract) VerifyAccess(ctx contractapi.TransactionContextInterface,
	credentialID uint64, expectedHolder string, expectedZone string) (bool, error) {

	credential, err := s.getCredentialByID(ctx, credentialID)
	if err != nil {
		return false, err
	}
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return false, fmt.Errorf("VerifyAccess: %w", err)
	}

	isOK := credential.EffectiveAt(now) &&
		credential.Holder == expectedHolder &&
		credential.ZoneID == expectedZone

	s.emitEvent(ctx, eventAccessVerified, model.AccessVerifiedEvent{
		CredentialID:   credentialID,
		ExpectedHolder: expectedHolder,
		ExpectedZone:   expectedZone,
		IsOK:           isOK,
		VerifiedAt:     now,
	})
	logger.Debugf("Access verification for credential %d, zone '%s': %t", credentialID, expectedZone, isOK)
	return isOK, nil
}

// RevokePass invalidates a credential before its natural expiry. Authority
// only; one-way, like alert resolution.
func (s *TourtraceSmartContract) RevokePass(ctx contractapi.TransactionContextInterface, credentialID uint64) (*model.AccessCredential, error) {
	caller, err := s.currentCallerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("RevokePass: failed to get caller identity: %w", err)
	}
	registry, err := s.getRegistry(ctx, credentialFamily)
	if err != nil {
		return nil, fmt.Errorf("RevokePass: %w", err)
	}
	if err := s.requireAuthority(registry, caller); err != nil {
		return nil, err
	}

	// Fresh read immediately before the write; a racing revoke observes
	// Valid == false here and fails.
	credential, err := s.getCredentialByID(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if !credential.Valid {
		return nil, fmt.Errorf("credential %d is already revoked: %w", credentialID, ErrAlreadyTerminal)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("RevokePass: %w", err)
	}

	credential.Valid = false
	credentialKey, err := s.createCredentialKey(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("RevokePass: failed to create key for credential %d: %w", credentialID, err)
	}
	credentialBytes, err := json.Marshal(credential)
	if err != nil {
		return nil, fmt.Errorf("RevokePass: failed to marshal credential %d: %w", credentialID, err)
	}
	if err := ctx.GetStub().PutState(credentialKey, credentialBytes); err != nil {
		return nil, fmt.Errorf("RevokePass: failed to save credential %d to ledger: %w", credentialID, err)
	}

	s.emitEvent(ctx, eventPassRevoked, model.PassRevokedEvent{
		CredentialID: credentialID,
		Holder:       credential.Holder,
		ZoneID:       credential.ZoneID,
		RevokedBy:    caller,
		RevokedAt:    now,
	})
	logger.Infof("Credential %d revoked by '%s'", credentialID, caller)
	return credential, nil
}

// UpdateCredentialMetadata rewrites a credential's metadata URI. Authority
// only; repeatable, and orthogonal to the validity state machine.
func (s *TourtraceSmartContract) UpdateCredentialMetadata(ctx contractapi.TransactionContextInterface,
	credentialID uint64, newMetadataURI string) (*model.AccessCredential, error) {

	caller, err := s.currentCallerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("UpdateCredentialMetadata: failed to get caller identity: %w", err)
	}
	registry, err := s.getRegistry(ctx, credentialFamily)
	if err != nil {
		return nil, fmt.Errorf("UpdateCredentialMetadata: %w", err)
	}
	if err := s.requireAuthority(registry, caller); err != nil {
		return nil, err
	}
	if err := s.validateOptionalString(newMetadataURI, "newMetadataUri", maxMetadataURILength); err != nil {
		return nil, err
	}

	credential, err := s.getCredentialByID(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return nil, fmt.Errorf("UpdateCredentialMetadata: %w", err)
	}

	credential.MetadataURI = newMetadataURI
	credentialKey, err := s.createCredentialKey(ctx, credentialID)
	if err != nil {
		return nil, fmt.Errorf("UpdateCredentialMetadata: failed to create key for credential %d: %w", credentialID, err)
	}
	credentialBytes, err := json.Marshal(credential)
	if err != nil {
		return nil, fmt.Errorf("UpdateCredentialMetadata: failed to marshal credential %d: %w", credentialID, err)
	}
	if err := ctx.GetStub().PutState(credentialKey, credentialBytes); err != nil {
		return nil, fmt.Errorf("UpdateCredentialMetadata: failed to save credential %d to ledger: %w", credentialID, err)
	}

	s.emitEvent(ctx, eventMetadataUpdated, model.MetadataUpdatedEvent{
		CredentialID:   credentialID,
		NewMetadataURI: newMetadataURI,
		UpdatedBy:      caller,
		UpdatedAt:      now,
	})
	logger.Infof("Credential %d metadata updated by '%s'", credentialID, caller)
	return credential, nil
}
