package dialogue

import (
	"fmt"
	"strconv"
	"strings"

	"roofbot/internal/catalog"
	"roofbot/internal/models"
)

// Reserved replies.
const (
	GoBackLabel  = "بازگشت به مرحله قبل"
	ConfirmLabel = "تائید فیلتر ها و ادامه"
	RestartLabel = "شروع مجدد از اول"
)

const districtsPerRow = 3

const (
	msgWelcome         = "سلام! برای تخمین قیمت ملک به چند سوال کوتاه پاسخ دهید."
	msgAskCategory     = "دسته بندی مورد نظر را انتخاب کنید:"
	msgAskCity         = "شهر مورد نظر را انتخاب کنید:"
	msgAskDistrict     = "لطفاً منطقه مورد نظر را وارد کنید:"
	msgAskDays         = "لطفاً تعداد روزها را وارد کنید (بین 1 تا 90):"
	msgChosen          = "شما %s را انتخاب کردید."
	msgDaysChosen      = "شما %d روز را انتخاب کردید."
	msgInvalidChoice   = "انتخاب نامعتبر است. لطفاً یکی از گزینه‌ها را انتخاب کنید."
	msgInvalidDistrict = "منطقه نامعتبر است. لطفاً دوباره تلاش کنید."
	msgDaysRange       = "تعداد روز نامعتبر است. لطفاً عددی بین 1 تا 90 وارد کنید."
	msgDaysNotNumber   = "ورودی نامعتبر است. لطفاً عددی بین 1 تا 90 وارد کنید."
	msgPickOption      = "لطفاً یکی از گزینه‌ها را انتخاب کنید."
	msgNotStarted      = "لطفاً با استفاده از /start شروع کنید."
	msgWaiting         = "فیلترها تأیید شدند. لطفا کمی صبر کنید..."
	msgLookupFailed    = "متأسفانه دریافت قیمت در حال حاضر ممکن نیست. می‌توانید دوباره تأیید کنید یا از اول شروع کنید."
	msgRestarted       = "فیلترها پاک شدند. از اول شروع کنیم."
	msgNextRound       = "برای استعلام جدید دوباره دسته بندی را انتخاب کنید."
)

const msgApartmentDetails = `لطفا جزئیات آپارتمان را به شکل زیر وارد کنید:

طبقه:2
کل طبقات:4
ساخت:1390
اتاق:3
آسانسور
پارکینگ
انباری

نکته 1: می‌توانید یک یا چند مورد را وارد نکنید، مثلا فقط طبقه را بنویسید.
وجود آسانسور، پارکینگ و انباری یعنی ملک حتما این موارد را داشته باشد؛ اگر مهم نیست آن‌ها را ننویسید.
نکته 2: هر سطر یک مورد، با دونقطه و بدون فاصله اضافی.
نکته 3: اگر موردی را اشتباه وارد کنید، امکان بازگشت و اصلاح وجود دارد.`

const msgVillaDetails = `لطفا جزئیات ملک ویلایی را به شکل زیر وارد کنید:

ساخت:1390
اتاق:3
بالکن
پارکینگ
انباری

نکته 1: می‌توانید یک یا چند مورد را وارد نکنید، مثلا فقط ساخت را بنویسید.
وجود بالکن، پارکینگ و انباری یعنی ملک حتما این موارد را داشته باشد؛ اگر مهم نیست آن‌ها را ننویسید.
نکته 2: هر سطر یک مورد، با دونقطه و بدون فاصله اضافی.
نکته 3: اگر موردی را اشتباه وارد کنید، امکان بازگشت و اصلاح وجود دارد.`

func text(s string) models.Prompt {
	return models.Prompt{Text: s}
}

func goBackRow() []string {
	return []string{GoBackLabel}
}

func categoryPrompt(c *catalog.Catalog) models.Prompt {
	p := models.Prompt{Text: msgAskCategory}
	for _, label := range c.CategoryLabels() {
		p.Keyboard = append(p.Keyboard, []string{label})
	}
	return p
}

func cityPrompt(c *catalog.Catalog) models.Prompt {
	p := models.Prompt{Text: msgAskCity, Keyboard: [][]string{goBackRow()}}
	for _, label := range c.CityLabels() {
		p.Keyboard = append(p.Keyboard, []string{label})
	}
	return p
}

func districtPrompt(c *catalog.Catalog, cityID string) models.Prompt {
	p := models.Prompt{Text: msgAskDistrict, Keyboard: [][]string{goBackRow()}}
	var row []string
	for _, d := range c.Districts(cityID) {
		row = append(row, d.Label)
		if len(row) == districtsPerRow {
			p.Keyboard = append(p.Keyboard, row)
			row = nil
		}
	}
	if len(row) > 0 {
		p.Keyboard = append(p.Keyboard, row)
	}
	return p
}

func daysPrompt() models.Prompt {
	return models.Prompt{Text: msgAskDays, Keyboard: [][]string{goBackRow()}}
}

func detailsPrompt(cat models.CategoryID) models.Prompt {
	msg := msgApartmentDetails
	if cat == models.CategoryVilla {
		msg = msgVillaDetails
	}
	return models.Prompt{Text: msg, Keyboard: [][]string{goBackRow()}}
}

func confirmPrompt(f models.Filter) models.Prompt {
	return models.Prompt{
		Text: "فیلترهای شما:\n" + summarize(f) + "\nآیا تأیید می‌کنید؟",
		Keyboard: [][]string{
			{ConfirmLabel, RestartLabel},
			goBackRow(),
		},
	}
}

func summarize(f models.Filter) string {
	lines := []string{
		"دسته بندی: " + f.Category.Label,
		"شهر: " + f.City.Label,
		"منطقه: " + f.District.Label,
		"تعداد روز: " + strconv.Itoa(f.Days),
	}
	if f.Category.ID.HasDetails() && f.Details != nil {
		details := describeDetails(f.Details)
		if len(details) == 0 {
			details = []string{"بدون جزئیات"}
		}
		lines = append(lines, "جزئیات: "+strings.Join(details, "، "))
	}
	return strings.Join(lines, "\n")
}

func chosen(label string) models.Prompt {
	return text(fmt.Sprintf(msgChosen, label))
}

func resultPrompt(result string) models.Prompt {
	return models.Prompt{Text: result, Format: models.FormatMarkdownV2}
}
