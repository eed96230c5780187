package rng

// Fake returns queued values from Intn, then zeros.
type Fake struct {
	queue []int
}

var _ Rand = (*Fake)(nil)

func NewFake(values ...int) *Fake {
	return &Fake{queue: values}
}

func (f *Fake) Intn(n int) int {
	if len(f.queue) == 0 {
		return 0
	}
	v := f.queue[0]
	f.queue = f.queue[1:]
	if n > 0 {
		v %= n
	}
	return v
}

func (f *Fake) Queue(values ...int) {
	f.queue = append(f.queue, values...)
}
