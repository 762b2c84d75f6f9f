package extract

import "context"

// Mock returns scripted text, for orchestration tests.
type Mock struct {
	Text  string
	Err   error
	Paths []string
}

func (m *Mock) ExtractText(_ context.Context, path string) (string, error) {
	m.Paths = append(m.Paths, path)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}
