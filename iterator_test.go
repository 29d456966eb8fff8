package handoffq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestElementsConsumesThenTerminatesOnClear(t *testing.T) {
	q := New[int]()
	q.Add(1)
	q.Add(2)
	q.Add(3)

	consumed := make(chan int, 3)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for v := range q.Elements() {
			consumed <- v
		}
	}()

	var got []int
	for i := 0; i < 3; i++ {
		select {
		case v := <-consumed:
			got = append(got, v)
		case <-time.After(settleTimeout):
			t.Fatalf("iteration stalled after %v", got)
		}
	}
	require.Equal(t, []int{1, 2, 3}, got)

	// The loop is now blocked on an empty queue; Clear must end it cleanly.
	require.Eventually(t, func() bool { return q.Waiting() == 1 },
		settleTimeout, time.Millisecond)
	q.Clear()

	select {
	case <-done:
	case <-time.After(settleTimeout):
		t.Fatal("iteration did not terminate after clear")
	}
}

func TestElementsStopsWhenConsumerBreaks(t *testing.T) {
	q := New(1, 2, 3, 4)

	var got []int
	for v := range q.Elements() {
		got = append(got, v)
		if len(got) == 2 {
			break
		}
	}
	require.Equal(t, []int{1, 2}, got)

	// Values not pulled stay buffered for the next sequence or claim.
	require.Equal(t, 2, q.Size())
	v, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestElementsFreshSequencePerCall(t *testing.T) {
	q := New(10, 20)

	for v := range q.Elements() {
		require.Equal(t, 10, v)
		break
	}
	for v := range q.Elements() {
		require.Equal(t, 20, v)
		break
	}
	require.True(t, q.IsEmpty())
}
