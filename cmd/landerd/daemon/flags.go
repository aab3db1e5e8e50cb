package daemon

const (
	// HomeFlag is the persistent flag selecting the application home directory.
	HomeFlag = "home"

	// ForceFlag lets init overwrite an existing home directory.
	ForceFlag = "force"

	// SimBlockTimeFlag sets the block cadence of the simulated chain adapter.
	SimBlockTimeFlag = "sim-block-time"
)
