package keys

import (
	"crypto/rand"
	"io"
)

// Generator 生成一次性访问密钥
type Generator interface {
	Generate() (*KeyPair, error)
}

// RandomGenerator 使用 Rand 作为随机源，Rand 为空时使用 crypto/rand
type RandomGenerator struct {
	Rand io.Reader
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{Rand: rand.Reader}
}

func (g *RandomGenerator) Generate() (*KeyPair, error) {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}
	return GenerateFrom(r)
}

// GeneratorFunc 函数适配器
type GeneratorFunc func() (*KeyPair, error)

func (f GeneratorFunc) Generate() (*KeyPair, error) {
	return f()
}
