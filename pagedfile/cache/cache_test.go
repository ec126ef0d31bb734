package cache

import "testing"

func TestLRUEvictsOldest(t *testing.T) {
	c := New(5)
	c.Add(5, []byte{5})
	c.Add(8, []byte{8})
	c.Add(12, []byte{12})
	c.Add(21, []byte{21})
	c.Add(240, []byte{240})

	c.Get(5)
	c.Get(12)
	c.Get(8)
	c.Get(240)

	c.Add(241, []byte{241})

	if cl := len(c.cache); cl != 5 {
		t.Fatalf("expected cache size 5 got %d", cl)
	}
	for _, want := range []int{5, 12, 8, 240, 241} {
		if _, ok := c.cache[want]; !ok {
			t.Fatalf("expected cache[%d] to be present", want)
		}
	}
	if _, ok := c.cache[21]; ok {
		t.Fatal("expected cache[21] to have been evicted")
	}
}

func TestRemove(t *testing.T) {
	c := New(2)
	c.Add(1, []byte{1})
	c.Remove(1)
	if _, hit := c.Get(1); hit {
		t.Fatal("expected removed key to miss")
	}
}
