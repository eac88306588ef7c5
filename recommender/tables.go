package recommender

// Static scoring configuration. Everything here is built once at package init
// and never mutated afterwards.

type ColorFamily string

const (
	ColorBlack   ColorFamily = "black"
	ColorWhite   ColorFamily = "white"
	ColorGray    ColorFamily = "gray"
	ColorBlue    ColorFamily = "blue"
	ColorRed     ColorFamily = "red"
	ColorGreen   ColorFamily = "green"
	ColorYellow  ColorFamily = "yellow"
	ColorPurple  ColorFamily = "purple"
	ColorBrown   ColorFamily = "brown"
	ColorBeige   ColorFamily = "beige"
	ColorOrange  ColorFamily = "orange"
	ColorOther   ColorFamily = "other"
	ColorUnknown ColorFamily = "unknown"
)

type colorAlias struct {
	family  ColorFamily
	aliases []string
}

// colorAliases is scanned in order, so families listed first win ambiguous labels.
var colorAliases = []colorAlias{
	{ColorBlack, []string{"黑色", "黑", "black", "深黑", "炭黑", "jet black", "onyx"}},
	{ColorWhite, []string{"白色", "白", "white", "純白", "米白", "象牙白", "ivory", "off-white", "cream"}},
	{ColorGray, []string{"灰色", "灰", "gray", "grey", "深灰", "淺灰", "炭灰", "銀灰", "charcoal", "silver", "銀色"}},
	{ColorBlue, []string{"藍色", "藍", "blue", "深藍", "淺藍", "海軍藍", "天藍", "牛仔藍", "寶藍", "navy", "denim", "indigo", "teal"}},
	{ColorRed, []string{"紅色", "紅", "red", "深紅", "酒紅", "粉紅", "粉色", "桃紅", "pink", "burgundy", "maroon", "wine"}},
	{ColorGreen, []string{"綠色", "綠", "green", "深綠", "淺綠", "軍綠", "橄欖綠", "草綠", "olive", "mint"}},
	{ColorYellow, []string{"黃色", "黃", "yellow", "淺黃", "檸檬黃", "金黃", "mustard", "gold", "金色"}},
	{ColorPurple, []string{"紫色", "紫", "purple", "深紫", "淺紫", "薰衣草紫", "lavender", "violet", "lilac"}},
	{ColorBrown, []string{"棕色", "棕", "brown", "咖啡色", "深棕", "淺棕", "巧克力色", "coffee", "chocolate"}},
	{ColorBeige, []string{"米色", "米", "beige", "卡其", "駝色", "奶油色", "khaki", "camel", "sand"}},
	{ColorOrange, []string{"橙色", "橘色", "orange", "橘紅", "橙黃", "coral", "rust"}},
}

// colorKeywordRoots is the short-root fallback used when no alias matched.
// It also covers simplified-script roots that the alias table does not list.
var colorKeywordRoots = []struct {
	root   string
	family ColorFamily
}{
	{"黑", ColorBlack}, {"白", ColorWhite}, {"灰", ColorGray}, {"藍", ColorBlue}, {"蓝", ColorBlue},
	{"紅", ColorRed}, {"红", ColorRed}, {"綠", ColorGreen}, {"绿", ColorGreen}, {"黃", ColorYellow},
	{"黄", ColorYellow}, {"紫", ColorPurple}, {"棕", ColorBrown}, {"褐", ColorBrown}, {"米", ColorBeige},
	{"橙", ColorOrange}, {"橘", ColorOrange},
	{"black", ColorBlack}, {"white", ColorWhite}, {"gray", ColorGray}, {"grey", ColorGray},
	{"blue", ColorBlue}, {"red", ColorRed}, {"green", ColorGreen}, {"yellow", ColorYellow},
	{"purple", ColorPurple}, {"brown", ColorBrown}, {"beige", ColorBeige}, {"orange", ColorOrange},
}

// unknownColorLabels are placeholder values written when a color could not be determined.
var unknownColorLabels = map[string]struct{}{
	"未知": {}, "unknown": {}, "n/a": {}, "none": {}, "-": {},
}

var canonicalFamilies = map[ColorFamily]struct{}{
	ColorBlack: {}, ColorWhite: {}, ColorGray: {}, ColorBlue: {}, ColorRed: {}, ColorGreen: {},
	ColorYellow: {}, ColorPurple: {}, ColorBrown: {}, ColorBeige: {}, ColorOrange: {},
	ColorOther: {}, ColorUnknown: {},
}

type familyPair [2]ColorFamily

func pairSet(pairs ...familyPair) map[familyPair]struct{} {
	set := make(map[familyPair]struct{}, len(pairs)*2)
	for _, p := range pairs {
		set[p] = struct{}{}
		set[familyPair{p[1], p[0]}] = struct{}{}
	}
	return set
}

var classicPairs = pairSet(
	familyPair{ColorBlack, ColorWhite},
	familyPair{ColorBlack, ColorGray},
	familyPair{ColorWhite, ColorGray},
	familyPair{ColorBlue, ColorWhite},
	familyPair{ColorBlue, ColorBeige},
	familyPair{ColorBlack, ColorBlue},
	familyPair{ColorGreen, ColorBeige},
	familyPair{ColorBrown, ColorBeige},
)

var contrastPairs = pairSet(
	familyPair{ColorRed, ColorGreen},
	familyPair{ColorBlue, ColorOrange},
	familyPair{ColorYellow, ColorPurple},
)

var adjacentPairs = pairSet(
	familyPair{ColorBlue, ColorGreen},
	familyPair{ColorRed, ColorOrange},
	familyPair{ColorYellow, ColorOrange},
)

var neutralFamilies = map[ColorFamily]struct{}{
	ColorBlack: {}, ColorWhite: {}, ColorGray: {}, ColorBeige: {},
}

const (
	scoreUnknownColor = 50.0
	scoreSameFamily   = 85.0
	scoreClassicPair  = 90.0
	scoreNeutralPair  = 75.0
	scoreContrastPair = 70.0
	scoreAdjacentPair = 80.0
	scoreBaselinePair = 60.0
)

// StylePreference is the fixed preference profile of a style level.
type StylePreference struct {
	Name   string
	Colors []ColorFamily
	Styles []string
}

func (p StylePreference) prefersStyle(style string) bool {
	for _, s := range p.Styles {
		if s == style {
			return true
		}
	}
	return false
}

func (p StylePreference) prefersColor(c ColorFamily) bool {
	for _, f := range p.Colors {
		if f == c {
			return true
		}
	}
	return false
}

const (
	MinStyleLevel     = 1
	MaxStyleLevel     = 5
	DefaultStyleLevel = 3
)

var styleLevels = map[int]StylePreference{
	1: {
		Name:   "conservative classic",
		Colors: []ColorFamily{ColorBlack, ColorWhite, ColorGray, ColorBeige},
		Styles: []string{"formal", "modern"},
	},
	2: {
		Name:   "simple and practical",
		Colors: []ColorFamily{ColorBlack, ColorWhite, ColorGray, ColorBlue},
		Styles: []string{"casual", "modern"},
	},
	3: {
		Name:   "everyday fashion",
		Colors: []ColorFamily{ColorBlack, ColorWhite, ColorGray, ColorBlue},
		Styles: []string{"conservative", "casual", "formal"},
	},
	4: {
		Name:   "trend forward",
		Colors: []ColorFamily{ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPurple},
		Styles: []string{"modern", "romantic"},
	},
	5: {
		Name:   "bold and experimental",
		Colors: []ColorFamily{ColorRed, ColorYellow, ColorPurple, ColorGreen, ColorOrange},
		Styles: []string{"romantic", "vintage"},
	},
}

// StyleLevel returns the preference profile for level.
func StyleLevel(level int) (StylePreference, bool) {
	p, ok := styleLevels[level]
	return p, ok
}

// occasionBroadening widens a requested occasion to the tags that satisfy it.
var occasionBroadening = map[string][]string{
	"formal": {"formal", "work"},
	"daily":  {"daily", "casual"},
	"sport":  {"sport"},
	"date":   {"date", "daily"},
	"work":   {"work", "formal"},
}

// tagAliases folds bilingual season, occasion and style labels onto canonical tags.
var tagAliases = map[string]string{
	"春季": "spring", "春": "spring", "春天": "spring",
	"夏季": "summer", "夏": "summer", "夏天": "summer",
	"秋季": "autumn", "秋": "autumn", "秋天": "autumn", "fall": "autumn",
	"冬季": "winter", "冬": "winter", "冬天": "winter",
	"日常": "daily", "everyday": "daily",
	"休閒": "casual", "休闲": "casual",
	"正式": "formal",
	"工作": "work", "上班": "work", "office": "work",
	"約會": "date", "约会": "date",
	"運動": "sport", "运动": "sport", "sports": "sport", "sporty": "sport", "athletic": "sport",
	"派對": "party", "聚會": "party",
	"浪漫": "romantic",
	"復古": "vintage", "复古": "vintage", "retro": "vintage",
	"現代": "modern", "现代": "modern",
	"保守": "conservative", "經典": "conservative", "classic": "conservative",
}

var categoryAliases = map[string]Category{
	"top": CategoryTop, "tops": CategoryTop, "上衣": CategoryTop,
	"bottom": CategoryBottom, "bottoms": CategoryBottom, "下著": CategoryBottom, "下装": CategoryBottom, "褲子": CategoryBottom,
	"outerwear": CategoryOuterwear, "外套": CategoryOuterwear, "jacket": CategoryOuterwear, "coat": CategoryOuterwear,
	"shoes": CategoryShoes, "shoe": CategoryShoes, "鞋子": CategoryShoes, "鞋": CategoryShoes,
	"accessory": CategoryAccessory, "accessories": CategoryAccessory, "配件": CategoryAccessory,
	"other": CategoryOther, "其他": CategoryOther,
}

// Material keyword groups matched as substrings of the folded material label.
var (
	warmMaterials       = []string{"毛", "厚", "保暖", "羊毛", "絨", "wool", "thick", "fleece", "cashmere", "down", "knit"}
	longSleeveMaterials = []string{"薄", "長袖", "long sleeve", "long-sleeve", "thin"}
	breathableMaterials = []string{"棉", "麻", "透氣", "薄", "涼爽", "cotton", "linen", "breathable", "mesh", "thin"}
	waterproofMaterials = []string{"防水", "雨", "waterproof", "rain", "gore-tex"}
)

var rainConditions = map[string]struct{}{
	"rain": {}, "thunderstorm": {}, "drizzle": {},
}
