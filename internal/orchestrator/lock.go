/*
Copyright The CloudNativePG Contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package orchestrator owns the cluster-wide OperationLock and runs the
// promote, demote-all and host-registry workflows under it.
package orchestrator

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Holder identifies who is currently holding the OperationLock.
type Holder struct {
	Operation string
	ID        string
	StartedAt time.Time
	Deadline  time.Time
}

// OperationLock is the process-wide mutex serializing every mutating
// operation. At most one holder at a time; contenders fail fast rather
// than queue, so a BUSY response is immediate.
type OperationLock struct {
	mu     sync.Mutex
	holder *Holder
}

// NewOperationLock returns an unheld lock. It is created once at process
// init and never destroyed.
func NewOperationLock() *OperationLock {
	return &OperationLock{}
}

// TryAcquire attempts to take the lock for operation, with the given
// budget. It fails immediately (ok=false) if another operation holds it.
func (l *OperationLock) TryAcquire(operation string, budget time.Duration) (Holder, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.holder != nil {
		return Holder{}, false
	}

	now := time.Now()
	h := Holder{
		Operation: operation,
		ID:        uuid.NewString(),
		StartedAt: now,
		Deadline:  now.Add(budget),
	}
	l.holder = &h
	return h, true
}

// Release frees the lock if it is currently held by holderID. Releasing a
// lock not held by holderID (e.g. a stale deadline-expiry release racing a
// fresh acquisition) is a no-op, not an error — release must be safe to
// call from every exit path of an orchestrated operation.
func (l *OperationLock) Release(holderID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.holder != nil && l.holder.ID == holderID {
		l.holder = nil
	}
}

// Current reports the current holder, if any.
func (l *OperationLock) Current() (Holder, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.holder == nil {
		return Holder{}, false
	}
	return *l.holder, true
}
