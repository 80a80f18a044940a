// Package i18n renders the user-facing messages of the void and order status
// endpoints. Arabic is the default language; English is also available.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The key doubles as the English text.
const (
	MsgUnauthorized       = "User does not have permissions."
	MsgUserNotFound       = "User does not exist."
	MsgInvalidCredentials = "Invalid username or password."
	MsgValidationFailed   = "An unexpected error occurred while validating the user."
	MsgInvoiceFinalized   = "No item of this invoice can be voided (invoice status: %s)."
	MsgInvoiceNotFound    = "Invoice %s does not exist."
	MsgMissingField       = "Row %s: item and quantity are required."
	MsgVoidFailed         = "An unexpected error occurred while processing the void."
	MsgVoidSaveFailed     = "An unexpected error occurred while processing the void: %s"
	MsgMissingParameter   = "Table and invoice are required."
	MsgNoOrdersFound      = "No orders found for this table and invoice."
	MsgOrderStatusFailed  = "An unexpected error occurred while loading the order status."
	MsgInvalidRequest     = "Invalid request body."
)

var arabic = map[string]string{
	MsgUnauthorized:       "المستخدم ليس لديه صلاحيات.",
	MsgUserNotFound:       "المستخدم غير موجود.",
	MsgInvalidCredentials: "خطأ في اسم المستخدم أو كلمة المرور.",
	MsgValidationFailed:   "حدث خطأ غير متوقع في التحقق من المستخدم.",
	MsgInvoiceFinalized:   "لا يمكن إتلاف أي عنصر من هذه الفاتورة (حالة الفاتورة: %s).",
	MsgInvoiceNotFound:    "الفاتورة %s غير موجودة.",
	MsgMissingField:       "الصف %s: العنصر والكمية مطلوبان.",
	MsgVoidFailed:         "حدث خطأ غير متوقع في معالجة الإتلاف.",
	MsgVoidSaveFailed:     "حدث خطأ غير متوقع في معالجة الإتلاف: %s",
	MsgMissingParameter:   "الطاولة والفاتورة مطلوبتان.",
	MsgNoOrdersFound:      "لا توجد طلبات لهذه الطاولة والفاتورة.",
	MsgOrderStatusFailed:  "حدث خطأ غير متوقع في تحميل حالة الطلبات.",
	MsgInvalidRequest:     "الطلب غير صالح.",
}

var supported = []language.Tag{language.Arabic, language.English}

// Translator selects a language per request and formats messages in it.
type Translator struct {
	catalog  *catalog.Builder
	tags     []language.Tag
	matcher  language.Matcher
	fallback language.Tag
}

// New builds a translator whose fallback language is defaultLocale.
func New(defaultLocale string) (*Translator, error) {
	fallback, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("parse default locale %q: %w", defaultLocale, err)
	}

	// The matcher returns the first tag when nothing matches, so the
	// fallback goes first.
	tags := []language.Tag{}
	_, idx, conf := language.NewMatcher(supported).Match(fallback)
	if conf == language.No {
		return nil, fmt.Errorf("unsupported default locale %q", defaultLocale)
	}
	fallback = supported[idx]
	tags = append(tags, fallback)
	for _, tag := range supported {
		if tag != fallback {
			tags = append(tags, tag)
		}
	}

	b := catalog.NewBuilder(catalog.Fallback(fallback))
	for key, text := range arabic {
		if err := b.SetString(language.Arabic, key, text); err != nil {
			return nil, fmt.Errorf("register arabic message: %w", err)
		}
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, fmt.Errorf("register english message: %w", err)
		}
	}

	return &Translator{
		catalog:  b,
		tags:     tags,
		matcher:  language.NewMatcher(tags),
		fallback: fallback,
	}, nil
}

// Default returns the fallback language.
func (t *Translator) Default() language.Tag {
	return t.fallback
}

// Match resolves an Accept-Language style preference list to a supported
// language. An empty, unparsable or unsupported list yields the fallback.
func (t *Translator) Match(accept string) language.Tag {
	if accept == "" {
		return t.fallback
	}
	prefs, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(prefs) == 0 {
		return t.fallback
	}
	_, idx, conf := t.matcher.Match(prefs...)
	if conf == language.No {
		return t.fallback
	}
	return t.tags[idx]
}

// Sprintf formats the message key in the language chosen for accept.
func (t *Translator) Sprintf(accept, key string, args ...interface{}) string {
	p := message.NewPrinter(t.Match(accept), message.Catalog(t.catalog))
	return p.Sprintf(key, args...)
}
