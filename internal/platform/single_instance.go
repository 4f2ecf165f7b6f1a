package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"sync"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const activateMessage = "activate\n"

// InstanceGuard holds the single-instance lock. The lock is a listener on
// a localhost port derived from the application name, which doubles as the
// channel a second launch uses to ask the running instance to come forward.
type InstanceGuard struct {
	listener net.Listener
	address  string
	wg       sync.WaitGroup
}

// AcquireSingleInstance attempts to bind the port for appName.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := instanceAddress(appName)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w on %s", ErrAlreadyRunning, address)
	}
	return &InstanceGuard{listener: listener, address: address}, nil
}

// ServeActivation calls onActivate for every activation request until the
// guard is released.
func (guard *InstanceGuard) ServeActivation(onActivate func()) {
	guard.wg.Add(1)
	go func() {
		defer guard.wg.Done()
		for {
			conn, err := guard.listener.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, len(activateMessage))
			_ = conn.SetReadDeadline(time.Now().Add(time.Second))
			n, _ := conn.Read(buf)
			_ = conn.Close()
			if string(buf[:n]) == activateMessage && onActivate != nil {
				onActivate()
			}
		}
	}()
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	err := guard.listener.Close()
	guard.wg.Wait()
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

// ActivateRunningInstance asks the instance holding the lock for appName to
// show itself.
func ActivateRunningInstance(appName string, timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", instanceAddress(appName), timeout)
	if err != nil {
		return fmt.Errorf("dial running instance: %w", err)
	}
	defer conn.Close()
	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(activateMessage)); err != nil {
		return fmt.Errorf("activate running instance: %w", err)
	}
	return nil
}

func instanceAddress(appName string) string {
	return fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
