package model

import "time"

// AlertCategory classifies an emergency alert.
type AlertCategory uint8

const (
	CategoryPanic    AlertCategory = 0 // traveler pressed the panic button
	CategoryGeofence AlertCategory = 1 // traveler left a permitted zone
	CategoryAnomaly  AlertCategory = 2 // anomalous movement pattern detected
)

// IsValid reports whether the category is one of the defined values.
func (c AlertCategory) IsValid() bool {
	return c <= CategoryAnomaly
}

func (c AlertCategory) String() string {
	switch c {
	case CategoryPanic:
		return "PANIC"
	case CategoryGeofence:
		return "GEOFENCE"
	case CategoryAnomaly:
		return "ANOMALY"
	}
	return "UNKNOWN"
}

// Registry is the one-per-family singleton holding the administering
// authority and the next sequence number for that record family.
type Registry struct {
	ObjectType      string    `json:"objectType"` // "Registry"
	Family          string    `json:"family"`     // "alert" or "credential"
	Authority       string    `json:"authority"`  // full client ID permitted to administer this family
	SequenceCounter uint64    `json:"sequenceCounter"`
	CreatedAt       time.Time `json:"createdAt"`
	LastUpdatedAt   time.Time `json:"lastUpdatedAt"`
}

// Alert is an emergency alert raised by a traveler. Resolved alerts are kept
// on the ledger as an immutable historical record; Active flips to false
// exactly once and never reverts.
type Alert struct {
	ObjectType  string        `json:"objectType"` // "Alert"
	AlertID     uint64        `json:"alertId"`
	Reporter    string        `json:"reporter"` // full client ID of the traveler who raised it
	Category    AlertCategory `json:"category"`
	Location    string        `json:"location"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"createdAt"`
	Active      bool          `json:"active"`
}

// AccessCredential grants a traveler entry to a restricted zone until expiry
// or explicit revocation. Valid flips to false exactly once via revocation;
// expiry is never stored as a flag, it is compared against the clock at read
// time (see EffectiveAt).
type AccessCredential struct {
	ObjectType      string    `json:"objectType"` // "AccessCredential"
	CredentialID    uint64    `json:"credentialId"`
	SubjectIDHash   string    `json:"subjectIdHash"` // hex encoding of the 32-byte external identity binding
	ZoneID          string    `json:"zoneId"`
	ExpiryTimestamp int64     `json:"expiryTimestamp"` // unix seconds
	Holder          string    `json:"holder"`          // full client ID authorized to use the credential
	Valid           bool      `json:"valid"`
	MetadataURI     string    `json:"metadataUri"`
	MintedAt        time.Time `json:"mintedAt"`
}

// EffectiveAt reports whether the credential is usable at the given instant:
// not revoked and not yet expired.
func (c *AccessCredential) EffectiveAt(now time.Time) bool {
	return c.Valid && c.ExpiryTimestamp > now.Unix()
}

// EmergencyContact maps a contact type (e.g. "police", "medical") to the
// on-ledger address dispatchers should notify for that kind of emergency.
type EmergencyContact struct {
	ObjectType     string    `json:"objectType"` // "EmergencyContact"
	ContactType    string    `json:"contactType"`
	ContactAddress string    `json:"contactAddress"`
	AddedBy        string    `json:"addedBy"`
	AddedAt        time.Time `json:"addedAt"`
}

// HistoryEntry represents one historical state of a record, reconstructed
// from the ledger's per-key write history.
type HistoryEntry struct {
	TxID      string    `json:"txId"`
	Timestamp time.Time `json:"timestamp"`
	IsDelete  bool      `json:"isDelete"`
	Value     string    `json:"value"`  // raw JSON of the record at that point
	Action    string    `json:"action"` // e.g. "ACTIVE", "RESOLVED"
}

// PaginatedAlertResponse is returned by paginated alert queries.
type PaginatedAlertResponse struct {
	Alerts       []*Alert `json:"alerts"`
	NextBookmark string   `json:"nextBookmark"`
	FetchedCount int32    `json:"fetchedCount"`
}

// PaginatedCredentialResponse is returned by paginated credential queries.
type PaginatedCredentialResponse struct {
	Credentials  []*AccessCredential `json:"credentials"`
	NextBookmark string              `json:"nextBookmark"`
	FetchedCount int32               `json:"fetchedCount"`
}
