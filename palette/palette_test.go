package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	p := Default()

	assert.Equal(t, "rgb(171,71,188)", p.Resolve("motor"))
	assert.Equal(t, "#ff0000", p.Resolve("#ff0000"))
	assert.Equal(t, "not-a-key", p.Resolve("not-a-key"))
	assert.Equal(t, "", p.Resolve(""))
}

func TestCloneIsIndependent(t *testing.T) {
	p := Default()
	c := p.Clone()
	c["motor"] = "red"
	assert.Equal(t, "rgb(171,71,188)", p["motor"])
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
		ok   bool
	}{
		{"rgb(1,87,155)", RGB{1, 87, 155}, true},
		{"rgba(10, 20, 30, 0.5)", RGB{10, 20, 30}, true},
		{"RGB(300,0,0)", RGB{255, 0, 0}, true},
		{"#00ff80", RGB{0, 255, 128}, true},
		{"#fff", RGB{255, 255, 255}, true},
		{"Orange", RGB{255, 165, 0}, true},
		{"var(--accent)", RGB{}, false},
		{"#zzzzzz", RGB{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, Fallback, MustParse("nonsense"))
}

func TestBrighten(t *testing.T) {
	assert.Equal(t, RGB{201, 101, 218}, RGB{171, 71, 188}.Brighten(30))
	assert.Equal(t, RGB{255, 255, 255}, RGB{240, 235, 250}.Brighten(30))
	assert.Equal(t, "rgb(201,101,218)", RGB{171, 71, 188}.Brighten(30).CSS())
}

func TestHexAndBlend(t *testing.T) {
	assert.Equal(t, "#ff0000", RGB{255, 0, 0}.Hex())
	assert.Equal(t, RGB{0, 0, 0}, RGB{0, 0, 0}.Blend(RGB{255, 255, 255}, 0))
	assert.Equal(t, RGB{255, 255, 255}, RGB{0, 0, 0}.Blend(RGB{255, 255, 255}, 1))
}
