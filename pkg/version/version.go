package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/vanderheijden86/pitgraph/pkg/version.Version=v1.2.3"
var Version = "v0.1.0-dev"
