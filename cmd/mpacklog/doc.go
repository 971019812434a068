// Package main hosts the mpacklog CLI entrypoint and command graph.
//
// The Cobra-based command tree serves the newest record of a growing mpack
// log over TCP, dumps and inspects log files, watches a running server, and
// scaffolds configuration. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
