package game

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultMask = "****"

var ErrEmptyWordList = errors.New("word list is empty")

// DefaultWords is the built-in word pack.
var DefaultWords = []string{
	"向日葵",
	"火山",
	"宇航员",
	"竹子",
	"外卖骑手",
	"咖啡拉花",
	"热气球",
	"龙卷风",
	"大熊猫",
	"魔法师",
	"汉堡",
	"地铁站",
	"彩虹",
	"冲浪",
	"雨伞",
	"机器人",
	"灯塔",
	"冰淇淋",
	"跳绳",
	"灯泡",
	"潜水",
	"寿司",
	"长颈鹿",
	"乐高积木",
}

// WordPack is the YAML layout of a custom word file:
//
//	words:
//	  - sunflower
//	  - volcano
type WordPack struct {
	Words []string `yaml:"words"`
}

// LoadWordPack reads a YAML word pack from disk.
func LoadWordPack(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word pack: %w", err)
	}
	var pack WordPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse word pack %s: %w", path, err)
	}
	words := CleanWords(pack.Words)
	if len(words) == 0 {
		return nil, fmt.Errorf("word pack %s: %w", path, ErrEmptyWordList)
	}
	return words, nil
}

// CleanWords trims entries and drops blanks.
func CleanWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// WordManager holds the secret word and whether it is masked.
type WordManager struct {
	words  []string
	mask   string
	rng    *rand.Rand
	word   string
	hidden bool
}

func NewWordManager(words []string, mask string, rng *rand.Rand) (*WordManager, error) {
	words = CleanWords(words)
	if len(words) == 0 {
		return nil, ErrEmptyWordList
	}
	if mask == "" {
		mask = DefaultMask
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &WordManager{words: words, mask: mask, rng: rng, hidden: true}, nil
}

// DrawNewWord picks uniformly with replacement and masks the result.
func (m *WordManager) DrawNewWord() string {
	m.word = m.words[m.rng.Intn(len(m.words))]
	m.hidden = true
	return m.word
}

func (m *WordManager) ToggleVisibility() bool {
	m.hidden = !m.hidden
	return m.hidden
}

func (m *WordManager) Reveal() {
	m.hidden = false
}

func (m *WordManager) Word() string { return m.word }

func (m *WordManager) Hidden() bool { return m.hidden }

// Display is the mask while hidden, otherwise the word itself.
func (m *WordManager) Display() string {
	if m.hidden {
		return m.mask
	}
	return m.word
}

func (m *WordManager) ToggleLabel() string {
	if m.hidden {
		return "show word"
	}
	return "hide word"
}
