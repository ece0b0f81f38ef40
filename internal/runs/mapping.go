package runs

import (
	"encoding/json"
	"fmt"

	"github.com/oakmoor/scout/pkg/repository"
)

const runColumns = `id, status, location, conversation, candidates, records, started_at, completed_at`

func scanRun(s repository.Scanner) (Run, error) {
	var (
		r            Run
		conversation []byte
		candidates   []byte
		records      []byte
	)

	if err := s.Scan(
		&r.ID, &r.Status, &r.Location,
		&conversation, &candidates, &records,
		&r.StartedAt, &r.CompletedAt,
	); err != nil {
		return Run{}, err
	}

	if err := json.Unmarshal(conversation, &r.Conversation); err != nil {
		return Run{}, fmt.Errorf("decode conversation: %w", err)
	}
	if err := json.Unmarshal(candidates, &r.Candidates); err != nil {
		return Run{}, fmt.Errorf("decode candidates: %w", err)
	}
	if err := json.Unmarshal(records, &r.Records); err != nil {
		return Run{}, fmt.Errorf("decode records: %w", err)
	}

	return r, nil
}
