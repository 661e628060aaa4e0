package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"grimm.is/nftadm/internal/audit"
)

// RunAudit prints recent audit events, newest first.
func RunAudit(configPath, action string, limit int, since time.Duration) error {
	e, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if e.store == nil {
		return fmt.Errorf("audit trail is disabled or unavailable")
	}

	events, err := e.store.Query(time.Now().Add(-since), time.Now(), action, limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("no audit events")
		return nil
	}

	for _, evt := range events {
		printEvent(evt)
	}
	return nil
}

func printEvent(evt audit.Event) {
	status := "ok"
	if !evt.OK {
		status = "FAILED"
	}
	line := fmt.Sprintf("%s  %-10s %-22s %-6s user=%s",
		evt.Timestamp.Format(time.RFC3339), evt.Action, evt.Resource, status, evt.User)
	if len(evt.Details) > 0 {
		if data, err := json.Marshal(evt.Details); err == nil {
			line += " " + string(data)
		}
	}
	fmt.Println(line)
}

// RunAuditPrune removes audit events past the retention window.
func RunAuditPrune(configPath string) error {
	e, err := loadEnv(configPath)
	if err != nil {
		return err
	}
	defer e.close()

	if e.store == nil {
		return fmt.Errorf("audit trail is disabled or unavailable")
	}

	removed, err := e.store.Prune()
	if err != nil {
		return err
	}
	fmt.Printf("pruned %d event(s)\n", removed)
	return nil
}
