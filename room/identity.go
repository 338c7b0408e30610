// room/identity.go
package room

import (
	"crypto/rand"
	"encoding/base64"
	mathrand "math/rand"
	"strings"
)

// 玩家颜色池。每个房间持有自己打乱后的副本，按加入顺序取色。
var colorPalette = []string{
	"#FF5733",
	"#3498DB",
	"#9B59B6",
	"#F39C12",
	"#FFCC00",
	"#FF00FF",
	"#800080",
	"#8A2BE2",
	"#00FA9A",
	"#2E8B57",
}

var nameAdjectives = []string{
	"brave", "clever", "dusty", "eager", "fuzzy", "gentle", "happy",
	"jolly", "lucky", "mighty", "nimble", "quiet", "rusty", "sleepy",
	"sneaky", "speedy", "sturdy", "swift", "tiny", "witty",
}

var nameNouns = []string{
	"badger", "beaver", "falcon", "ferret", "heron", "lizard", "marmot",
	"otter", "panda", "pigeon", "rabbit", "raven", "salmon", "sparrow",
	"squid", "tortoise", "walrus", "weasel", "wombat", "yak",
}

func shuffledColors() []string {
	colors := make([]string, len(colorPalette))
	copy(colors, colorPalette)
	mathrand.Shuffle(len(colors), func(i, j int) {
		colors[i], colors[j] = colors[j], colors[i]
	})
	return colors
}

// generateName 生成一个 "AdjectiveNoun" 形式的展示名。
func generateName() string {
	adj := nameAdjectives[mathrand.Intn(len(nameAdjectives))]
	noun := nameNouns[mathrand.Intn(len(nameNouns))]
	name := adj + noun
	return strings.ToUpper(name[:1]) + name[1:]
}

// generateSecret 生成一个重连密钥。密钥只下发给对应连接，
// 每次成功重连后轮换。
func generateSecret() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
