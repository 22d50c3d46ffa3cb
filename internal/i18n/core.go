package i18n

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/ordermill/storefront/internal/common/cnst"
	"golang.org/x/text/language"
)

var (
	translatorOnce sync.Once
	translator     *I18n
	defaultLang    = cnst.LangDefault
)

// InitTranslator initializes the global translator
func InitTranslator(translationsPath string) error {
	var initErr error
	translatorOnce.Do(func() {
		translator = NewI18n(language.English)
		initErr = translator.LoadTranslations(translationsPath)
	})
	return initErr
}

// GetTranslator returns the global translator
func GetTranslator() *I18n {
	if translator == nil {
		_ = InitTranslator("configs/i18n")
	}
	return translator
}

// I18n manages internationalization and translations
type I18n struct {
	bundle      *i18n.Bundle
	defaultLang language.Tag
}

// NewI18n creates a new I18n instance with the specified default language
func NewI18n(defaultLang language.Tag) *I18n {
	bundle := i18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	return &I18n{
		bundle:      bundle,
		defaultLang: defaultLang,
	}
}

// LoadTranslations loads translation files from the specified directory
func (i *I18n) LoadTranslations(translationsDir string) error {
	files, err := os.ReadDir(translationsDir)
	if err != nil {
		return fmt.Errorf("failed to read translations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".toml") {
			continue
		}
		i.bundle.MustLoadMessageFile(filepath.Join(translationsDir, file.Name()))
	}

	return nil
}

// Translate returns a localized string for the given message ID and language
func (i *I18n) Translate(msgID string, lang string, templateData map[string]interface{}) string {
	tag := language.Make(lang)
	localizer := i18n.NewLocalizer(i.bundle, tag.String(), i.defaultLang.String())

	lc := &i18n.LocalizeConfig{MessageID: msgID}
	if len(templateData) > 0 {
		lc.TemplateData = templateData
	}

	msg, err := localizer.Localize(lc)
	if err != nil {
		return msgID // fall back to the message ID when no translation exists
	}
	return msg
}

// LanguageMiddleware stores the request's language preference in the context
func LanguageMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(cnst.XLang, languageFromRequest(c.Request))
		c.Next()
	}
}

// languageFromRequest extracts the language preference from HTTP headers
func languageFromRequest(r *http.Request) string {
	if lang := r.Header.Get(cnst.XLang); lang != "" {
		return normalizeLang(lang)
	}

	if acceptLang := r.Header.Get("Accept-Language"); acceptLang != "" {
		langs := strings.Split(acceptLang, ",")
		if len(langs) > 0 {
			first := strings.TrimSpace(strings.Split(langs[0], ";")[0])
			return normalizeLang(first)
		}
	}

	return defaultLang
}

func normalizeLang(lang string) string {
	langCode := strings.ToLower(strings.Split(lang, "-")[0])
	switch langCode {
	case cnst.LangEN, cnst.LangZH:
		return langCode
	}
	return defaultLang
}

func languageFromContext(c *gin.Context) string {
	lang, exists := c.Get(cnst.XLang)
	if !exists {
		return defaultLang
	}
	langStr, ok := lang.(string)
	if !ok || langStr == "" {
		return defaultLang
	}
	return langStr
}

// TranslateMessage translates a message ID using the context's language preference
func TranslateMessage(c *gin.Context, msgID string, data map[string]interface{}) string {
	return GetTranslator().Translate(msgID, languageFromContext(c), data)
}

// TranslateError renders an error into the context's language when it is an
// internationalized error; other errors are returned verbatim.
func TranslateError(c *gin.Context, err error) string {
	if i18nErr, ok := err.(interface {
		GetMessageID() string
		GetData() map[string]interface{}
	}); ok {
		return GetTranslator().Translate(i18nErr.GetMessageID(), languageFromContext(c), i18nErr.GetData())
	}
	return err.Error()
}
