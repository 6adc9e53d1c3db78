package bill

// StubRepository keeps the collection in memory for tests.
type StubRepository struct {
	Bills    []Bill
	SaveErr  error
	Saves    int
	LoadErr  error
	LoadData []Bill
}

func NewStubRepository() *StubRepository {
	return &StubRepository{}
}

func (s *StubRepository) Load() ([]Bill, error) {
	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return s.LoadData, nil
}

func (s *StubRepository) Save(bills []Bill) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Saves++
	s.Bills = make([]Bill, len(bills))
	copy(s.Bills, bills)
	return nil
}
