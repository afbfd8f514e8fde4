package history

import "time"

// debouncer coalesces bursts of updates into one trailing call.
//
// It is not safe for concurrent use on its own; the Manager guards it with
// its lock. Each schedule bumps seq, and a firing timer only counts if it
// still carries the latest seq, so a timer that fired while the Manager was
// rescheduling it is ignored.
type debouncer struct {
	sched Scheduler
	delay time.Duration
	timer Timer
	seq   uint64
}

// schedule cancels any scheduled call and arranges for fire to run after the
// delay with the sequence number of this call.
func (d *debouncer) schedule(fire func(seq uint64)) {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = d.sched.AfterFunc(d.delay, func() { fire(seq) })
}

// cancel stops the scheduled call, if any.
func (d *debouncer) cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

// active reports whether a call is scheduled.
func (d *debouncer) active() bool {
	return d.timer != nil
}

// claim reports whether a timer firing with seq is still current and, if so,
// marks the debouncer idle.
func (d *debouncer) claim(seq uint64) bool {
	if d.timer == nil || seq != d.seq {
		return false
	}
	d.timer = nil
	return true
}
