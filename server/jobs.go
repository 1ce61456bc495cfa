package server

import (
	"context"
	"time"

	"github.com/jagaapp/jaga/server/work"
	"github.com/jagaapp/jaga/shared"
)

const defaultAbandonedIncidentAge = 30 * time.Minute

// backupSqliteDb uploads the encrypted database file to cloud storage.
func backupSqliteDb(map[string]interface{}) error {
	return gstorageClient.UploadFile(context.Background(), dbPath)
}

// reapStaleIncidents drops incidents whose client went away without
// resolving or resetting them.
func reapStaleIncidents(args map[string]interface{}) error {
	maxAge := defaultAbandonedIncidentAge
	if mins, ok := args["max_age_mins"].(int); ok && mins > 0 {
		maxAge = time.Duration(mins) * time.Minute
	}

	if reaped := escalationManager.ReapAbandoned(maxAge); reaped > 0 {
		logg.Infof("%v stale incident(s) reaped", reaped)
	}

	return nil
}

func registerJobHandlers(workerAdapter *work.WorkerPoolAdapter) {
	workerAdapter.Register("reapStaleIncidents", reapStaleIncidents)

	if gstorageClient != nil {
		workerAdapter.Register("backupSqliteDb", backupSqliteDb)
	}
}

func enqueueJobs(workerAdapter *work.WorkerPoolAdapter, serverConfig *shared.ServerConfig) {
	workerAdapter.PeriodicallyPerform("*/10 * * * *", work.JobParams{
		Name:    "reapStaleIncidents",
		Handler: "reapStaleIncidents",
		Args: map[string]interface{}{
			"max_age_mins": serverConfig.Jaga.Escalation.AbandonedIncidentAgeInMins,
		},
	})

	if gstorageClient != nil {
		workerAdapter.PeriodicallyPerform(serverConfig.Google.Storage.SqliteBackupSchedule, work.JobParams{
			Name:    "backupSqliteDb",
			Handler: "backupSqliteDb",
			Args:    map[string]interface{}{},
		})
	}
}
