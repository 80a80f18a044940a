package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestTranslatorSprintf(t *testing.T) {
	tr, err := New("ar")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name   string
		accept string
		key    string
		args   []interface{}
		want   string
	}{
		{
			name: "defaultsToArabic",
			key:  MsgUnauthorized,
			want: "المستخدم ليس لديه صلاحيات.",
		},
		{
			name:   "arabicWithStatus",
			accept: "ar-SA",
			key:    MsgInvoiceFinalized,
			args:   []interface{}{"Paid"},
			want:   "لا يمكن إتلاف أي عنصر من هذه الفاتورة (حالة الفاتورة: Paid).",
		},
		{
			name:   "englishPreferred",
			accept: "en-US,en;q=0.9,ar;q=0.5",
			key:    MsgMissingField,
			args:   []interface{}{"2"},
			want:   "Row 2: item and quantity are required.",
		},
		{
			name: "arabicRowKeepsWesternDigits",
			key:  MsgMissingField,
			args: []interface{}{"12"},
			want: "الصف 12: العنصر والكمية مطلوبان.",
		},
		{
			name:   "germanFallsBack",
			accept: "de",
			key:    MsgUnauthorized,
			want:   "المستخدم ليس لديه صلاحيات.",
		},
		{
			name:   "unsupportedBeforeSupported",
			accept: "fr-FR,en;q=0.5",
			key:    MsgUserNotFound,
			want:   "User does not exist.",
		},
		{
			name:   "unsupportedFallsBack",
			accept: "fr-FR",
			key:    MsgUserNotFound,
			want:   "المستخدم غير موجود.",
		},
		{
			name:   "garbageFallsBack",
			accept: ";;;",
			key:    MsgInvalidCredentials,
			want:   "خطأ في اسم المستخدم أو كلمة المرور.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Sprintf(tt.accept, tt.key, tt.args...)
			if got != tt.want {
				t.Errorf("Sprintf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnglishDefault(t *testing.T) {
	tr, err := New("en")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tr.Default() != language.English {
		t.Errorf("Default() = %v, want en", tr.Default())
	}
	if got := tr.Sprintf("", MsgNoOrdersFound); got != MsgNoOrdersFound {
		t.Errorf("Sprintf() = %q, want %q", got, MsgNoOrdersFound)
	}
	if got := tr.Sprintf("ar", MsgNoOrdersFound); got != "لا توجد طلبات لهذه الطاولة والفاتورة." {
		t.Errorf("Sprintf(ar) = %q", got)
	}
}

func TestEveryMessageHasArabic(t *testing.T) {
	keys := []string{
		MsgUnauthorized, MsgUserNotFound, MsgInvalidCredentials, MsgValidationFailed,
		MsgInvoiceFinalized, MsgInvoiceNotFound, MsgMissingField, MsgVoidFailed,
		MsgVoidSaveFailed, MsgMissingParameter, MsgNoOrdersFound, MsgOrderStatusFailed,
		MsgInvalidRequest,
	}
	for _, key := range keys {
		if _, ok := arabic[key]; !ok {
			t.Errorf("no arabic text for %q", key)
		}
	}
}

func TestMatch(t *testing.T) {
	tr, err := New("ar")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		accept string
		want   language.Tag
	}{
		{accept: "", want: language.Arabic},
		{accept: "fr-FR", want: language.Arabic},
		{accept: "de", want: language.Arabic},
		{accept: "zh-CN", want: language.Arabic},
		{accept: "en-GB", want: language.English},
		{accept: "ar-EG", want: language.Arabic},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			if got := tr.Match(tt.accept); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.accept, got, tt.want)
			}
		})
	}
}

func TestNewRejectsUnsupportedDefault(t *testing.T) {
	if _, err := New("not a locale!"); err == nil {
		t.Error("New() should reject an unparsable locale")
	}
}
