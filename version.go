package nexi

// Version is overridden at build time with -ldflags "-X github.com/nexsupply/nexi.Version=...".
var Version = "0.1.0-dev"
