package audit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"time"
)

// EntriesToCSV renders audit entries as the CSV attachment served by the
// super-admin export endpoint.
func EntriesToCSV(entries []Entry) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{"timestamp", "actorUid", "actorEmail", "action", "targetType", "targetId", "severity", "detail"})
	for _, e := range entries {
		detail := ""
		if len(e.Detail) > 0 {
			if b, err := json.Marshal(e.Detail); err == nil {
				detail = string(b)
			}
		}
		_ = w.Write([]string{
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.ActorUID,
			e.ActorEmail,
			e.Action,
			e.TargetType,
			e.TargetID,
			e.Severity,
			detail,
		})
	}
	w.Flush()
	return buf.Bytes()
}
