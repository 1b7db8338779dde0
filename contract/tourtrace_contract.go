package contract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("tourtrace.contract")

// Constants for input validation and limits. String fields are length-bounded
// to keep record sizes compatible with the ledger's storage quota.
const (
	maxLocationLength    = 256
	maxZoneIDLength      = 256
	maxDescriptionLength = 1024
	maxMetadataURILength = 512
	maxContactTypeLength = 64
	subjectIDHashBytes   = 32

	defaultPageSize = 10
	maxPageSize     = 100
)

// TourtraceSmartContract manages emergency alerts and time-bound access
// credentials for travelers in restricted zones. Each record family (alerts,
// credentials) is administered by the authority recorded in its registry
// singleton; records live at deterministic composite keys derived from a
// monotonically increasing sequence counter.
type TourtraceSmartContract struct {
	contractapi.Contract
}

// Instantiate is called during chaincode instantiation.
func (s *TourtraceSmartContract) Instantiate(ctx contractapi.TransactionContextInterface) {
	logger.Info("TourtraceSmartContract Instantiated/Upgraded")
}

// getCurrentTxTimestamp retrieves the current transaction timestamp from the
// stub. All records and events are stamped with this, never with wall-clock
// time, so endorsers agree on every timestamp.
func (s *TourtraceSmartContract) getCurrentTxTimestamp(ctx contractapi.TransactionContextInterface) (time.Time, error) {
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime(), nil
}

// currentCallerID returns the invoker's full client identity string. The peer
// has already verified the signature over the proposal; this ID is the
// identity every ownership and authority check compares against.
func (s *TourtraceSmartContract) currentCallerID(ctx contractapi.TransactionContextInterface) (string, error) {
	clientIdentity := ctx.GetClientIdentity()
	if clientIdentity == nil {
		return "", errors.New("client identity is nil from context")
	}
	id, err := clientIdentity.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get client identity ID from context: %w", err)
	}
	if id == "" {
		return "", errors.New("client identity ID from context is empty")
	}
	return id, nil
}

// --- Validation Helper Functions ---

func (s *TourtraceSmartContract) validateRequiredString(input, field string, max int) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("%s cannot be empty: %w", field, ErrInvalidInput)
	}
	if len(input) > max {
		return fmt.Errorf("%s exceeds max length %d: %w", field, max, ErrInvalidInput)
	}
	return nil
}

func (s *TourtraceSmartContract) validateOptionalString(input, field string, max int) error {
	if input != "" && len(input) > max {
		return fmt.Errorf("%s exceeds max length %d: %w", field, max, ErrInvalidInput)
	}
	return nil
}
