//go:build !linux

package ipc

import "net"

func checkPeer(net.Conn) error { return nil }
