// Package fileproto описывает HTTP-протокол файлового эндпоинта ноутбука.
package fileproto

// Пути и параметры протокола.
const (
	DefaultPrefix  = "/files"
	UploadSubpath  = "/upload"
	HealthPath     = "/health"
	ManualGCPath   = "/admin/gc"
	RunPathFormat  = "%s/api/notebook/run/%s/%s"
	ContentTypeBin = "application/octet-stream"
)

// Имена полей формы загрузки.
const (
	FieldZeppelinURL = "zeppelinUrl"
	FieldNotebookID  = "noteBookId"
	FieldParagraphID = "paragraphId"
)

// DefaultBoundaryPrefix используется, если в Content-Type нет параметра boundary.
const DefaultBoundaryPrefix = "------"

// NotFoundBody — тело ответа 404 для скачивания.
const NotFoundBody = "404 (Not Found), the file may have been deleted, please run the query again"

// RecognizedFields возвращает имена полей, которые сохраняются в результате разбора.
func RecognizedFields() []string {
	return []string{FieldZeppelinURL, FieldNotebookID, FieldParagraphID}
}
