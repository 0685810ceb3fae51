package openlyrics

// formattingTag is an OpenLP formatting tag and the HTML it stands for.
type formattingTag struct {
	name      string
	startHTML string
	endHTML   string
}

// baseTags are OpenLP's built-in formatting tags, in OpenLP's order.
var baseTags = []formattingTag{
	{"r", `<span style="-webkit-text-fill-color:red">`, "</span>"},
	{"b", `<span style="-webkit-text-fill-color:black">`, "</span>"},
	{"bl", `<span style="-webkit-text-fill-color:blue">`, "</span>"},
	{"y", `<span style="-webkit-text-fill-color:yellow">`, "</span>"},
	{"g", `<span style="-webkit-text-fill-color:green">`, "</span>"},
	{"pk", `<span style="-webkit-text-fill-color:#FFC0CB">`, "</span>"},
	{"o", `<span style="-webkit-text-fill-color:#FFA500">`, "</span>"},
	{"pp", `<span style="-webkit-text-fill-color:#800080">`, "</span>"},
	{"w", `<span style="-webkit-text-fill-color:white">`, "</span>"},
	{"su", "<sup>", "</sup>"},
	{"sb", "<sub>", "</sub>"},
	{"p", "<p>", "</p>"},
	{"st", "<strong>", "</strong>"},
	{"it", "<em>", "</em>"},
	{"u", `<span style="text-decoration: underline;">`, "</span>"},
	{"br", "<br>", ""},
}

func lookupTag(name string) (formattingTag, bool) {
	for _, t := range baseTags {
		if t.name == name {
			return t, true
		}
	}
	return formattingTag{}, false
}

func (t formattingTag) start() string { return "{" + t.name + "}" }
func (t formattingTag) end() string   { return "{/" + t.name + "}" }
