// Package rpc holds what the gRPC server and client share: the service and
// method names and a codec that carries the protocol types as JSON, so
// neither side needs generated message code.
package rpc

const (
	ServiceName = "schedsync.v1.SyncService"

	MethodPing    = "/" + ServiceName + "/Ping"
	MethodLogin   = "/" + ServiceName + "/Login"
	MethodRefresh = "/" + ServiceName + "/Refresh"
	MethodSync    = "/" + ServiceName + "/Sync"
)
