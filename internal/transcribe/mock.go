package transcribe

import "context"

// Mock returns scripted transcripts, for orchestration tests.
type Mock struct {
	Text  string
	Err   error
	Paths []string
}

func (m *Mock) Transcribe(_ context.Context, wavPath string) (string, error) {
	m.Paths = append(m.Paths, wavPath)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}
