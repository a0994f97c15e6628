package store

// MockStore is an in-memory Store for tests.
type MockStore struct {
	PrinterID  string
	PrivateKey string

	// SetErr, when set, is returned by both setters.
	SetErr error

	SetPrinterIDCalls  int
	SetPrivateKeyCalls int
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) GetPrinterID() (string, bool) {
	return m.PrinterID, m.PrinterID != ""
}

func (m *MockStore) GetPrivateKey() (string, bool) {
	return m.PrivateKey, m.PrivateKey != ""
}

func (m *MockStore) SetPrinterID(value string) error {
	m.SetPrinterIDCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.PrinterID = value
	return nil
}

func (m *MockStore) SetPrivateKey(value string) error {
	m.SetPrivateKeyCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.PrivateKey = value
	return nil
}
