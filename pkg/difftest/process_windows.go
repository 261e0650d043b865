//go:build windows

package difftest

import "os/exec"

func isolate(*exec.Cmd) {}
