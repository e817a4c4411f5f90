package main

import (
	"os"
	"syscall"

	"github.com/golang/glog"
)

// execRebooter restarts the bridge by re-executing the current binary,
// the host-side analog of a cold reboot. The peer reboots on its own
// side after receiving the acknowledgement.
type execRebooter struct{}

// Reboot implements esb.Rebooter. It does not return.
func (execRebooter) Reboot() {
	glog.Info("restarting")
	glog.Flush()
	exe, err := os.Executable()
	if err == nil {
		err = syscall.Exec(exe, os.Args, os.Environ())
	}
	glog.Errorf("restart failed: %v", err)
	os.Exit(1)
}
