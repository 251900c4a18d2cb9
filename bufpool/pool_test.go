package bufpool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TFMV/chnative/bufpool"
)

func TestGetSizedCorrectly(t *testing.T) {
	p := bufpool.New()
	buf := p.Get(100)
	require.Len(t, buf, 100)
}

func TestPutGetReuse(t *testing.T) {
	p := bufpool.New()
	buf := p.Get(4096)
	require.Len(t, buf, 4096)
	p.Put(buf)

	buf2 := p.Get(4000)
	require.Len(t, buf2, 4000)
	require.GreaterOrEqual(t, cap(buf2), 4000)
}

func TestLargeBypass(t *testing.T) {
	p := bufpool.New()
	buf := p.Get(4 * 1024 * 1024)
	require.Len(t, buf, 4*1024*1024)
	p.Put(buf) // no-op, should not panic
}
