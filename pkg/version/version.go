package version

// Set with -ldflags "-X github.com/cfoust/raingame/pkg/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
