package config

import (
	"strconv"
	"time"
)

type MirrorConfig interface {
	GetMirrorURL() string
	GetMirrorToken() string
	GetMirrorTimeout() time.Duration
	GetReplicationWorkers() int
	GetReplicationQueueSize() int
	GetResourceLocationBase() string
}

type Mirror struct{}

var _ MirrorConfig = Mirror{}

// GetMirrorURL returns the base URL of the remote SCIM mirror. Empty
// disables replication.
func (Mirror) GetMirrorURL() string {
	return GetEnv("MIRROR_URL", "")
}

func (Mirror) GetMirrorToken() string {
	return GetEnv("MIRROR_TOKEN", "")
}

func (Mirror) GetMirrorTimeout() time.Duration {
	return envDuration("MIRROR_TIMEOUT_SECONDS", 5*time.Second)
}

func (Mirror) GetReplicationWorkers() int {
	return envInt("REPLICATION_WORKERS", 4)
}

func (Mirror) GetReplicationQueueSize() int {
	return envInt("REPLICATION_QUEUE_SIZE", 256)
}

// GetResourceLocationBase is the base used for the meta.location URI of
// translated resources.
func (Mirror) GetResourceLocationBase() string {
	return GetEnv("RESOURCE_LOCATION_BASE", "https://api.slack.com/scim/v2/Users")
}

func envInt(envVar string, defaultValue int) int {
	v, err := strconv.Atoi(GetEnv(envVar, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func envDuration(envVar string, defaultValue time.Duration) time.Duration {
	v, err := strconv.Atoi(GetEnv(envVar, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return time.Duration(v) * time.Second
}
