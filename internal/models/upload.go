package models

import "github.com/yourname/notebook_files/pkg/fileproto"

// FormPart описывает одну часть multipart-тела: FieldPart или FilePart.
type FormPart interface {
	formPart()
}

// FieldPart — именованное текстовое поле формы.
type FieldPart struct {
	Name  string
	Value string
}

// FilePart — файловая часть формы, записанная на диск.
type FilePart struct {
	DeclaredFileName string
	ByteCount        int64
}

func (FieldPart) formPart() {}
func (FilePart) formPart()  {}

// ParsedUpload возвращается после разбора запроса загрузки.
type ParsedUpload struct {
	Fields      map[string]string
	Parts       []FormPart
	FileName    string
	FilePath    string
	Size        int64
	ContentType string
}

// NewParsedUpload создаёт результат, в котором все известные поля равны пустой строке.
func NewParsedUpload() ParsedUpload {
	fields := make(map[string]string, 3)
	for _, name := range fileproto.RecognizedFields() {
		fields[name] = ""
	}
	return ParsedUpload{Fields: fields}
}

func (p ParsedUpload) ZeppelinURL() string { return p.Fields[fileproto.FieldZeppelinURL] }
func (p ParsedUpload) NotebookID() string  { return p.Fields[fileproto.FieldNotebookID] }
func (p ParsedUpload) ParagraphID() string { return p.Fields[fileproto.FieldParagraphID] }

// HasFile сообщает, была ли в запросе файловая часть.
func (p ParsedUpload) HasFile() bool {
	return p.FilePath != ""
}
