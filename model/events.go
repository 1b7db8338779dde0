package model

import "time"

// Event payloads. One event is emitted per accepted state transition (plus
// one per access verification, including failed verifications); payloads are
// JSON-marshalled into the chaincode event body. Off-chain watchers rely on
// these being append-only and never revised, so fields are only ever added.

// AlertTriggeredEvent is emitted when a traveler raises a new alert.
type AlertTriggeredEvent struct {
	AlertID     uint64        `json:"alertId"`
	Reporter    string        `json:"reporter"`
	Category    AlertCategory `json:"category"`
	Location    string        `json:"location"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// AlertResolvedEvent is emitted when an active alert is resolved.
type AlertResolvedEvent struct {
	AlertID    uint64    `json:"alertId"`
	ResolvedBy string    `json:"resolvedBy"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// CredentialMintedEvent is emitted when an access credential is minted.
type CredentialMintedEvent struct {
	CredentialID    uint64    `json:"credentialId"`
	Holder          string    `json:"holder"`
	SubjectIDHash   string    `json:"subjectIdHash"`
	ZoneID          string    `json:"zoneId"`
	ExpiryTimestamp int64     `json:"expiryTimestamp"`
	MetadataURI     string    `json:"metadataUri"`
	MintedAt        time.Time `json:"mintedAt"`
}

// AccessVerifiedEvent is emitted on every verification attempt, successful
// or not. Verification attempts are part of the auditable history.
type AccessVerifiedEvent struct {
	CredentialID   uint64    `json:"credentialId"`
	ExpectedHolder string    `json:"expectedHolder"`
	ExpectedZone   string    `json:"expectedZone"`
	IsOK           bool      `json:"isOk"`
	VerifiedAt     time.Time `json:"verifiedAt"`
}

// PassRevokedEvent is emitted when the authority revokes a credential.
type PassRevokedEvent struct {
	CredentialID uint64    `json:"credentialId"`
	Holder       string    `json:"holder"`
	ZoneID       string    `json:"zoneId"`
	RevokedBy    string    `json:"revokedBy"`
	RevokedAt    time.Time `json:"revokedAt"`
}

// MetadataUpdatedEvent is emitted when a credential's metadata URI changes.
type MetadataUpdatedEvent struct {
	CredentialID   uint64    `json:"credentialId"`
	NewMetadataURI string    `json:"newMetadataUri"`
	UpdatedBy      string    `json:"updatedBy"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// EmergencyContactAddedEvent is emitted when the authority registers a
// dispatch contact.
type EmergencyContactAddedEvent struct {
	ContactType    string    `json:"contactType"`
	ContactAddress string    `json:"contactAddress"`
	AddedBy        string    `json:"addedBy"`
	AddedAt        time.Time `json:"addedAt"`
}
