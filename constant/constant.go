package constant

// EgressStatus is the locally persisted view of a recording job's lifecycle.
// The media server remains authoritative; these values mirror its reported
// state at the last transition the service observed.
type EgressStatus string

const (
	EgressStatusStarting EgressStatus = "STARTING"
	EgressStatusActive   EgressStatus = "ACTIVE"
	EgressStatusStopping EgressStatus = "STOPPING"
	EgressStatusComplete EgressStatus = "COMPLETE"
	EgressStatusFailed   EgressStatus = "FAILED"
)

func (s EgressStatus) String() string {
	return string(s)
}

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
