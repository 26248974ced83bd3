package link

import (
	"fmt"
	"runtime"

	"github.com/golang/glog"
)

// transact writes frame and polls the receive side until the reply for
// its opcode arrives. The frame is resent on each timeout, up to the
// configured retries. A failed transaction counts one error.
func (e *Engine) transact(frame []byte) error {
	op := Opcode(frame[1])
	e.pending[op] = false
	e.replyErrs[op] = nil
	for attempt := 0; ; attempt++ {
		if err := e.write(frame); err != nil {
			return e.fail(fmt.Errorf("%s: %w", op, err))
		}
		if e.await(op) {
			return e.replyErrs[op]
		}
		if attempt >= e.cfg.Retries {
			break
		}
		glog.V(2).Infof("%s: no reply, retry %d/%d", op, attempt+1, e.cfg.Retries)
	}
	glog.Warningf("%s: no reply after %d attempts", op, e.cfg.Retries+1)
	return e.fail(fmt.Errorf("%s: %w", op, ErrNoReply))
}

func (e *Engine) await(op Opcode) bool {
	start := e.clock.Time()
	for {
		e.Poll()
		if e.pending[op] {
			return true
		}
		if e.clock.Time().Sub(start) >= e.cfg.Timeout {
			return false
		}
		runtime.Gosched()
	}
}

// post writes frame without waiting for the reply.
func (e *Engine) post(frame []byte) error {
	if err := e.write(frame); err != nil {
		return e.fail(fmt.Errorf("%s: %w", Opcode(frame[1]), err))
	}
	return nil
}
