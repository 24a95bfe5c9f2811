package httptransport

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// formTemplates 解析内置模板
func formTemplates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

type formView struct {
	Title      string
	Action     string
	SiteKey    string
	Stylesheet string
}

// FormHandler 渲染支持请求表单
type FormHandler struct {
	siteKey    string
	stylesheet string
}

// NewFormHandler 创建表单处理器
//
// 参数:
//   - siteKey: reCAPTCHA 站点密钥，注入到表单组件中
//   - stylesheet: 额外样式表地址，留空不引用
func NewFormHandler(siteKey, stylesheet string) *FormHandler {
	return &FormHandler{siteKey: siteKey, stylesheet: stylesheet}
}

// Render GET / 返回表单页面
func (h *FormHandler) Render(c *gin.Context) {
	c.HTML(http.StatusOK, "form.html", formView{
		Title:      "Support Request",
		Action:     "/submit",
		SiteKey:    h.siteKey,
		Stylesheet: h.stylesheet,
	})
}
