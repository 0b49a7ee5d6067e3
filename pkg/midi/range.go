package midi

import "fmt"

// beatRange is a sliding window of one beat over absolute ticks.
type beatRange struct {
	cnt int

	lowerBound int64
	upperBound int64
}

func newBeatRange(ticksPerBeat int64) *beatRange {
	return &beatRange{upperBound: ticksPerBeat}
}

func (m *beatRange) stepBy(n int) {
	m.cnt += n
	step := m.upperBound - m.lowerBound

	m.upperBound += step * int64(n)
	m.lowerBound += step * int64(n)
}

func (m *beatRange) contains(tick int64) bool {
	return tick >= m.lowerBound && tick < m.upperBound
}

// seek moves the window forward until it holds tick.
func (m *beatRange) seek(tick int64) {
	step := m.upperBound - m.lowerBound
	if step <= 0 {
		return
	}
	for !m.contains(tick) && tick >= m.upperBound {
		m.stepBy(max(1, int((tick-m.upperBound)/step)+1))
	}
}

// position is the 1-based bar.beat in 4/4.
func (m *beatRange) position() string {
	return fmt.Sprintf("%d.%d", m.cnt/4+1, m.cnt%4+1)
}
