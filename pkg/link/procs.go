package link

import "fmt"

// Procedure is invoked when the peer calls a remote procedure.
type Procedure func()

// RPCTable maps procedure indexes to procedures.
type RPCTable struct {
	procs []Procedure
}

func newRPCTable(size int) *RPCTable {
	return &RPCTable{procs: make([]Procedure, size)}
}

// Len returns the number of slots.
func (t *RPCTable) Len() int {
	return len(t.procs)
}

// Register binds proc to index, a nil proc unregisters.
func (t *RPCTable) Register(index uint8, proc Procedure) error {
	if int(index) >= len(t.procs) {
		return fmt.Errorf("rpc %d: %w", index, ErrOutOfRange)
	}
	t.procs[index] = proc
	return nil
}

// call invokes the procedure at index and tells if one was registered.
func (t *RPCTable) call(index uint8) bool {
	if int(index) >= len(t.procs) || t.procs[index] == nil {
		return false
	}
	t.procs[index]()
	return true
}

// Script answers a script invocation from the peer.
type Script func() int32

// ScriptTable maps script names to scripts.
type ScriptTable struct {
	scripts map[string]Script
}

func newScriptTable() *ScriptTable {
	return &ScriptTable{scripts: make(map[string]Script)}
}

// Register binds script to name, a nil script unregisters.
func (t *ScriptTable) Register(name string, script Script) error {
	if err := validateScriptName(name); err != nil {
		return err
	}
	if script == nil {
		delete(t.scripts, name)
	} else {
		t.scripts[name] = script
	}
	return nil
}

// Names returns the registered script names.
func (t *ScriptTable) Names() []string {
	names := make([]string, 0, len(t.scripts))
	for name := range t.scripts {
		names = append(names, name)
	}
	return names
}

func (t *ScriptTable) call(name string) (int32, bool) {
	script, ok := t.scripts[name]
	if !ok {
		return InvalidScriptReply, false
	}
	return script(), true
}

func validateScriptName(name string) error {
	if name == "" || len(name) > MaxScriptName {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			return fmt.Errorf("%q: %w", name, ErrInvalidName)
		}
	}
	return nil
}
