package bank

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cyberquiz-service/internal/domain"
)

// The export artifact wraps the question array so the downloaded file can
// directly replace the seed file consumed on first run.
const (
	artifactPrefix = "// questions.json\nwindow.questionsData = "
	artifactSuffix = ";"
)

// encodeArtifact renders the downloadable export form of a bank.
func encodeArtifact(questions []domain.Question) ([]byte, error) {
	data, err := json.MarshalIndent(questions, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode bank artifact: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(artifactPrefix)
	buf.Write(data)
	buf.WriteString(artifactSuffix)
	return buf.Bytes(), nil
}

// decodeQuestions accepts either a bare JSON array (the storage form) or an
// exported artifact, so load(export(load(bank))) reproduces the bank exactly.
func decodeQuestions(data []byte) ([]domain.Question, error) {
	payload := bytes.TrimSpace(data)
	if !bytes.HasPrefix(payload, []byte("[")) {
		i := bytes.IndexByte(payload, '=')
		if i < 0 {
			return nil, fmt.Errorf("decode bank: no question array found")
		}
		payload = bytes.TrimSpace(payload[i+1:])
		payload = bytes.TrimSuffix(payload, []byte(artifactSuffix))
	}
	var questions []domain.Question
	if err := json.Unmarshal(payload, &questions); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}
	return questions, nil
}
