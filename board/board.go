package board

import (
	"fmt"
	"math/rand"
)

// Kind 地块类型
type Kind string

const (
	Hills     Kind = "Hills"     // brick
	Forest    Kind = "Forest"    // lumber
	Mountains Kind = "Mountains" // ore
	Fields    Kind = "Fields"    // grain
	Pasture   Kind = "Pasture"   // wool
	Desert    Kind = "Desert"
)

// NoValue is the tilesByValue bucket for the desert tile, which never
// produces on a dice roll.
const NoValue = 7

// Tile 单个地块。Value 为 0 表示该地块没有点数（沙漠）。
type Tile struct {
	Kind  Kind `json:"kind"`
	Value int  `json:"value,omitempty"`
}

// Road 道路段。OwnerID 为空表示未被占领；一旦设置就不再改变。
type Road struct {
	ID      string `json:"id"`
	OwnerID string `json:"playerId,omitempty"`
}

// Board 棋盘。Tiles 与 Roads 在创建后只有 RobberPosition 和道路的
// OwnerID 会变化；TilesByValue 是 Tiles 的派生索引，创建后只读。
type Board struct {
	Tiles          []Tile        `json:"tiles"`
	TilesByValue   map[int][]int `json:"tilesByValue"`
	Roads          [][]Road      `json:"roads"`
	RobberPosition int           `json:"robberPosition"`
}

// 地块行宽，总和为 19。
var tilesPerRow = []int{3, 4, 5, 4, 3}

// 每行道路段数量。
var roadsPerRow = []int{6, 4, 8, 5, 10, 6, 10, 5, 8, 4, 6}

// 固定的地块组合：3 砖、4 木、3 矿、4 麦、4 羊、1 沙漠。
var tileSet = []Kind{
	Hills, Hills, Hills,
	Forest, Forest, Forest, Forest,
	Mountains, Mountains, Mountains,
	Fields, Fields, Fields, Fields,
	Pasture, Pasture, Pasture, Pasture,
	Desert,
}

// 固定的点数组合，分配给 18 个非沙漠地块。
var valueSet = []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}

// Generate 生成一个新的随机棋盘。无状态，可重复调用。
func Generate() *Board {
	tiles := shuffledTiles()
	values := shuffledValues()

	robberPosition := 0
	valueOffset := 0
	rowOffset := 0
	for _, rowCount := range tilesPerRow {
		for i := rowOffset; i < rowOffset+rowCount; i++ {
			if tiles[i].Kind == Desert {
				robberPosition = i
				continue
			}
			tiles[i].Value = values[valueOffset]
			valueOffset++
		}
		rowOffset += rowCount
	}

	byValue := make(map[int][]int)
	for i, t := range tiles {
		v := t.Value
		if v == 0 {
			v = NoValue
		}
		byValue[v] = append(byValue[v], i)
	}

	return &Board{
		Tiles:          tiles,
		TilesByValue:   byValue,
		Roads:          generateRoads(),
		RobberPosition: robberPosition,
	}
}

func shuffledTiles() []Tile {
	tiles := make([]Tile, len(tileSet))
	for i, k := range tileSet {
		tiles[i] = Tile{Kind: k}
	}
	rand.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	return tiles
}

func shuffledValues() []int {
	values := make([]int, len(valueSet))
	copy(values, valueSet)
	rand.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
	return values
}

func generateRoads() [][]Road {
	next := 0
	rows := make([][]Road, len(roadsPerRow))
	for r, count := range roadsPerRow {
		rows[r] = make([]Road, count)
		for i := range rows[r] {
			next++
			rows[r][i] = Road{ID: fmt.Sprintf("road_%d", next)}
		}
	}
	return rows
}

// FindRoad 按 id 查找道路段。没有找到时返回 nil。
func (b *Board) FindRoad(id string) *Road {
	for r := range b.Roads {
		for i := range b.Roads[r] {
			if b.Roads[r][i].ID == id {
				return &b.Roads[r][i]
			}
		}
	}
	return nil
}
