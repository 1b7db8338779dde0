package contract

import (
	"crypto/x509"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"github.com/hyperledger/fabric-protos-go/peer"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Test doubles for the Fabric transaction context. The stub embeds the shim
// interface so only the methods the contract touches need implementations;
// anything else panics, which is exactly what a test should do if the
// contract starts calling something the stub does not model.

const (
	authorityID = "x509::CN=tourism-authority::OU=admin"
	travelerID  = "x509::CN=tara-traveler::OU=client"
	holderID    = "x509::CN=harper-holder::OU=client"
	strangerID  = "x509::CN=sam-stranger::OU=client"
)

var validSubjectHash = strings.Repeat("ab", 32)

type recordedEvent struct {
	name    string
	payload []byte
}

type mockStub struct {
	shim.ChaincodeStubInterface
	state   map[string][]byte
	history map[string][]*queryresult.KeyModification
	events  []recordedEvent
	txTime  time.Time
	txSeq   int
}

func newMockStub() *mockStub {
	return &mockStub{
		state:   map[string][]byte{},
		history: map[string][]*queryresult.KeyModification{},
		txTime:  time.Unix(1735689600, 0), // 2025-01-01T00:00:00Z
	}
}

func (m *mockStub) GetTxID() string {
	return fmt.Sprintf("tx-%04d", m.txSeq)
}

func (m *mockStub) GetState(key string) ([]byte, error) {
	return m.state[key], nil
}

func (m *mockStub) PutState(key string, value []byte) error {
	stored := append([]byte(nil), value...)
	m.state[key] = stored
	m.txSeq++
	m.history[key] = append(m.history[key], &queryresult.KeyModification{
		TxId:      m.GetTxID(),
		Value:     stored,
		Timestamp: timestamppb.New(m.txTime),
	})
	return nil
}

func (m *mockStub) CreateCompositeKey(objectType string, attributes []string) (string, error) {
	// Same layout as the shim: U+0000 namespace prefix, U+0000 separators.
	key := string(rune(0)) + objectType + string(rune(0))
	for _, attr := range attributes {
		key += attr + string(rune(0))
	}
	return key, nil
}

func (m *mockStub) matchingKeys(objectType string, keys []string) []string {
	prefix, _ := m.CreateCompositeKey(objectType, keys)
	matched := []string{}
	for key := range m.state {
		if strings.HasPrefix(key, prefix) {
			matched = append(matched, key)
		}
	}
	sort.Strings(matched)
	return matched
}

func (m *mockStub) GetStateByPartialCompositeKey(objectType string, keys []string) (shim.StateQueryIteratorInterface, error) {
	kvs := []*queryresult.KV{}
	for _, key := range m.matchingKeys(objectType, keys) {
		kvs = append(kvs, &queryresult.KV{Key: key, Value: m.state[key]})
	}
	return &stateIterator{kvs: kvs}, nil
}

func (m *mockStub) GetStateByPartialCompositeKeyWithPagination(objectType string, keys []string, pageSize int32, bookmark string) (shim.StateQueryIteratorInterface, *peer.QueryResponseMetadata, error) {
	matched := m.matchingKeys(objectType, keys)
	start := 0
	if bookmark != "" {
		for i, key := range matched {
			if key >= bookmark {
				start = i
				break
			}
		}
	}
	kvs := []*queryresult.KV{}
	nextBookmark := ""
	for i := start; i < len(matched); i++ {
		if int32(len(kvs)) == pageSize {
			nextBookmark = matched[i]
			break
		}
		kvs = append(kvs, &queryresult.KV{Key: matched[i], Value: m.state[matched[i]]})
	}
	metadata := &peer.QueryResponseMetadata{
		FetchedRecordsCount: int32(len(kvs)),
		Bookmark:            nextBookmark,
	}
	return &stateIterator{kvs: kvs}, metadata, nil
}

func (m *mockStub) GetHistoryForKey(key string) (shim.HistoryQueryIteratorInterface, error) {
	return &historyIterator{mods: m.history[key]}, nil
}

func (m *mockStub) GetTxTimestamp() (*timestamppb.Timestamp, error) {
	return timestamppb.New(m.txTime), nil
}

func (m *mockStub) SetEvent(name string, payload []byte) error {
	m.events = append(m.events, recordedEvent{name: name, payload: payload})
	return nil
}

func (m *mockStub) eventsNamed(name string) []recordedEvent {
	matched := []recordedEvent{}
	for _, ev := range m.events {
		if ev.name == name {
			matched = append(matched, ev)
		}
	}
	return matched
}

type stateIterator struct {
	kvs []*queryresult.KV
	pos int
}

func (it *stateIterator) HasNext() bool { return it.pos < len(it.kvs) }

func (it *stateIterator) Next() (*queryresult.KV, error) {
	kv := it.kvs[it.pos]
	it.pos++
	return kv, nil
}

func (it *stateIterator) Close() error { return nil }

type historyIterator struct {
	mods []*queryresult.KeyModification
	pos  int
}

func (it *historyIterator) HasNext() bool { return it.pos < len(it.mods) }

func (it *historyIterator) Next() (*queryresult.KeyModification, error) {
	mod := it.mods[it.pos]
	it.pos++
	return mod, nil
}

func (it *historyIterator) Close() error { return nil }

type mockClientIdentity struct {
	id string
}

func (c *mockClientIdentity) GetID() (string, error)    { return c.id, nil }
func (c *mockClientIdentity) GetMSPID() (string, error) { return "TourismMSP", nil }
func (c *mockClientIdentity) GetAttributeValue(string) (string, bool, error) {
	return "", false, nil
}
func (c *mockClientIdentity) AssertAttributeValue(string, string) error { return nil }
func (c *mockClientIdentity) GetX509Certificate() (*x509.Certificate, error) {
	return nil, nil
}

type mockTransactionContext struct {
	stub     *mockStub
	identity *mockClientIdentity
}

func (c *mockTransactionContext) GetStub() shim.ChaincodeStubInterface { return c.stub }
func (c *mockTransactionContext) GetClientIdentity() cid.ClientIdentity {
	return c.identity
}

// setCaller switches the identity subsequent operations run as.
func (c *mockTransactionContext) setCaller(id string) { c.identity.id = id }

func newTestContext() (*mockTransactionContext, *mockStub) {
	stub := newMockStub()
	return &mockTransactionContext{stub: stub, identity: &mockClientIdentity{id: travelerID}}, stub
}
