// Package classify assigns one of a fixed set of categories to a book by
// counting title keyword hits.
package classify

import (
	"sort"
	"strings"
)

// DefaultCategory is used when no keyword matches.
const DefaultCategory = 1

// Category is a named keyword bucket.
type Category struct {
	ID       int
	Name     string
	Keywords []string
}

// Categories is the category table, ordered by ID.
var Categories = []Category{
	{1, "小說文學", []string{
		"小說", "文學", "詩", "詩集", "散文", "故事", "傳記", "回憶錄",
		"文學獎", "文學地景", "文學導賞", "文學地圖", "文學旅人",
		"村上春樹", "東野圭吾", "三毛", "金庸", "武俠", "奇幻", "科幻",
		"推理", "懸疑", "愛情", "言情", "BL", "耽美", "輕小說",
		"轉生", "重生", "穿越", "異世界", "冒險", "冒險記", "探險",
		"守則", "魔女", "勇者", "魔王", "史萊姆", "治療師", "對魔師",
		"間諜", "家家酒", "新娘", "殿下",
		"挪威的森林", "幻夜", "馬爾他之鷹", "華氏451度", "人鼠之間",
	}},
	{2, "語言學習", []string{
		"日語", "日文", "日本語", "日檢", "JLPT", "N1", "N2", "N3", "N4", "N5",
		"英語", "英文", "IELTS", "雅思", "TOEFL", "多益", "TOEIC", "英檢",
		"韓語", "韓文", "韓檢", "韓文單字", "時事韓語",
		"法語", "法文", "德語", "德文", "德檢",
		"西語", "西班牙語", "義大利語", "義大利人",
		"泰語", "泰國語", "俄語", "俄文", "俄語字母",
		"語言", "會話", "單字", "詞彙", "文法", "聽力", "閱讀",
		"自學", "自由行", "旅遊", "旅行", "觀光",
	}},
	{3, "健康醫療", []string{
		"健康", "醫療", "醫學", "醫生", "醫師", "醫院", "診斷", "照護",
		"養生", "中醫", "中藥", "穴位", "經絡", "撥筋", "穴療",
		"懷孕", "產後", "育兒", "育嬰", "新手媽媽", "兒童", "青少年",
		"癌症", "腫瘤", "肺癌", "飲食指導", "對症蔬療",
		"心臟", "胃病", "胃食道逆流", "胃酸", "膝蓋", "拇趾外翻",
		"細胞", "自噬", "大腦", "腦", "記憶", "專注力", "情緒",
		"睡眠", "休息", "體適能", "運動", "減肥", "瘦身",
		"順時鐘", "節氣", "養生智慧",
	}},
	{4, "料理飲食", []string{
		"料理", "食譜", "烹飪", "烹調", "廚藝", "廚房", "做菜",
		"麵包", "烘焙", "點心", "甜點", "蛋糕", "餅乾",
		"刀工", "精準", "全魚", "魚", "海鮮",
		"家常", "家常菜", "便當", "午餐", "晚餐", "早餐",
		"香料", "調味", "漬物", "醃漬", "季節漬",
		"飲食", "美食", "餐廳", "小吃", "夜市",
		"素食", "蔬食", "營養", "營養午餐", "飲食法則",
	}},
	{5, "商業理財", []string{
		"商業", "理財", "投資", "股票", "股市", "選股", "巴菲特",
		"金錢", "財務", "會計", "經濟", "金融", "銀行",
		"管理", "經營", "企業", "公司", "創業", "生意",
		"簡報", "工作法", "職場",
		"加班", "效率", "時間管理", "時間貧困",
		"博弈", "談判", "心理學", "暗黑心理學",
		"對帳單", "帳單", "金錢教室",
	}},
	{6, "漫畫", []string{
		"漫畫", "漫畫版", "愛藏版", "新裝版", "特裝版",
		"BLEACH", "死神", "烏龍派出所", "俺是大哥大",
		"哨聲響起", "赤河戀影", "失憶投捕", "擅長逃跑的殿下",
		"BLUE LOCK", "藍色監獄", "SPY×FAMILY", "間諜家家酒",
		"五等分的新娘", "普通輕音社", "文豪Stray Dogs",
		"變色龍依戀掌心", "dear親愛的", "妃真與殿",
		"野莓", "百瀨同學", "少女魂畫師", "患上不出道就會死的病",
	}},
	{7, "科學自然", []string{
		"科學", "數學", "物理", "化學", "生物", "自然", "自然科學",
		"方程式", "細胞", "圖鑑", "生物圖鑑", "動物圖鑑", "植物",
		"博物學", "博物學家", "地景", "地理", "地圖", "地圖集",
		"天文", "宇宙", "星球", "地球", "海洋", "河流", "山",
		"動物", "生態", "環境", "環保", "氣候",
		"設計史", "工程", "技術", "電腦", "程式", "軟體",
		"圖解", "百科", "全書", "大全",
	}},
	{8, "教育教材", []string{
		"教育", "教學", "教材", "課本", "教科書",
		"FUN學", "STEAM", "Preschool", "Grade", "閱讀課本",
		"考試", "模擬題", "題庫", "解析", "必考", "合格",
		"學習", "練習", "練習題", "習題", "作業",
		"老師", "教師", "教育方法", "育兒",
		"兒童", "幼兒", "學齡前", "小學", "中學", "高中",
		"套書", "系列", "全攻略", "完全解析",
	}},
}

// Classifier scores names against a category table.
type Classifier struct {
	categories []Category
	lowered    [][]string
	fallback   int
}

// New builds a Classifier over cats. A nil table uses Categories.
func New(cats []Category) *Classifier {
	if cats == nil {
		cats = Categories
	}
	sorted := append([]Category(nil), cats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	c := &Classifier{categories: sorted, fallback: DefaultCategory}
	for _, cat := range sorted {
		kws := make([]string, len(cat.Keywords))
		for i, k := range cat.Keywords {
			kws[i] = strings.ToLower(k)
		}
		c.lowered = append(c.lowered, kws)
	}
	return c
}

// Categories returns the table in ID order.
func (c *Classifier) Categories() []Category { return c.categories }

// Score counts keyword hits per category, in ID order.
func (c *Classifier) Score(name string) []int {
	name = strings.ToLower(name)
	scores := make([]int, len(c.categories))
	for i, kws := range c.lowered {
		for _, k := range kws {
			if strings.Contains(name, k) {
				scores[i]++
			}
		}
	}
	return scores
}

// Classify returns the best scoring category. Ties go to the lowest ID.
func (c *Classifier) Classify(name string) int {
	best, bestScore := c.fallback, 0
	for i, s := range c.Score(name) {
		if s > bestScore {
			best, bestScore = c.categories[i].ID, s
		}
	}
	return best
}

// Classify uses the built-in table.
func Classify(name string) int { return defaultClassifier.Classify(name) }

var defaultClassifier = New(nil)
