package emoji

const (
	Pushpin                     string = "\U0001F4CC"           //📌
	Rocket                      string = "\U0001F680"           //🚀
	WavingHandSign              string = "\U0001F44B"           //👋
	Memo                        string = "\U0001F4DD"           //📝
	Package                     string = "\U0001F4E6"           //📦
	LeftPointingMagnifyingGlass string = "\U0001F50D"           //🔍
	RightArrow                  string = "\U000027A1\U0000FE0F" // ➡️
	HourglassNotDone            string = "\U000023F3"           //⏳
	CheckMarkButton             string = "\U00002705"           //✅
	CrossMark                   string = "\U0000274C"           //❌
	NextTrackButton             string = "\U000023ED\U0000FE0F" // ⏭️
	SpinnerCheckMark            string = "\x1b[1;92m ✓ \x1b[0m" //✓
	SpinnerCrossMark            string = "\x1b[1;91m ✗ \x1b[0m" //✗
	Gear                        string = "\u2699\uFE0F"         // ⚙️
	Warning                     string = "\U000026A0\U0000FE0F" // ⚠️
	Exclamation                 string = "\U00002757"           //❗
)
