// Package ingest разбирает тело multipart/form-data построчно, без стандартного
// multipart-парсера, и пишет файловую часть прямо на диск.
//
// Разбор устроен как явный конечный автомат над типизированными токенами lexer'а:
//
//	seekBoundary --boundary--> header
//	header --filename=--> skipHeaders --blank--> fileBody --blank|boundary--> seekBoundary|header
//	header --name=-->     skipHeaders --blank--> fieldValue --line--> seekBoundary
//
// Конец потока в любом состоянии завершает разбор; открытый файл при этом закрывается.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/yourname/notebook_files/internal/models"
	"github.com/yourname/notebook_files/pkg/fileproto"
)

type state int

const (
	stateSeekBoundary state = iota
	stateHeader
	stateSkipHeaders
	stateFileBody
	stateFieldValue
)

// Ingestor принимает тела запросов загрузки и складывает файлы в dir.
type Ingestor struct {
	fs     afero.Fs
	dir    string
	logger *log.Logger
}

// New создаёт Ingestor поверх произвольной файловой системы.
func New(fs afero.Fs, dir string, logger *log.Logger) *Ingestor {
	return &Ingestor{
		fs:     fs,
		dir:    dir,
		logger: logger.WithPrefix("ingest"),
	}
}

// Dir возвращает каталог загрузок.
func (in *Ingestor) Dir() string {
	return in.dir
}

// MarkerFor вычисляет маркер границы по заголовку Content-Type.
// Без параметра boundary используется фиксированный префикс из дефисов.
func MarkerFor(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err == nil {
		if b := params["boundary"]; b != "" {
			return "--" + b
		}
	}
	return fileproto.DefaultBoundaryPrefix
}

// Ingest читает тело до конца и возвращает разобранные поля и сведения о файле.
// Любая ошибка чтения или записи фатальна и оборачивается в models.ErrIngest.
func (in *Ingestor) Ingest(ctx context.Context, body io.Reader, marker string) (models.ParsedUpload, error) {
	if err := in.fs.MkdirAll(in.dir, 0o755); err != nil {
		return models.ParsedUpload{}, fmt.Errorf("%w: create upload dir: %w", models.ErrIngest, err)
	}

	p := &parser{in: in, res: models.NewParsedUpload()}
	defer p.abort()

	lx := newLexer(body, marker)
	for {
		if err := ctx.Err(); err != nil {
			return models.ParsedUpload{}, fmt.Errorf("%w: %w", models.ErrIngest, err)
		}

		tok, err := lx.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.ParsedUpload{}, fmt.Errorf("%w: read body: %w", models.ErrIngest, err)
		}

		if err = p.step(tok); err != nil {
			return models.ParsedUpload{}, err
		}
	}

	if err := p.commitFile(); err != nil {
		return models.ParsedUpload{}, err
	}
	if !p.res.HasFile() {
		in.logger.Warn("upload without file part")
	}

	in.logger.Info("received parameters",
		fileproto.FieldZeppelinURL, p.res.ZeppelinURL(),
		fileproto.FieldNotebookID, p.res.NotebookID(),
		fileproto.FieldParagraphID, p.res.ParagraphID(),
		"file", p.res.FileName,
	)

	return p.res, nil
}

// parser хранит состояние автомата для одного запроса.
type parser struct {
	in    *Ingestor
	st    state
	after state
	field string
	line  []byte
	file  *partFile
	res   models.ParsedUpload
}

func (p *parser) step(tok token) error {
	switch p.st {
	case stateSeekBoundary:
		if tok.kind == tokenBoundary {
			p.st = stateHeader
		}

	case stateHeader:
		switch tok.kind {
		case tokenBoundary:
			// пустая часть
			return nil
		case tokenBlank:
			p.field = ""
			p.st = stateFieldValue
			return nil
		}
		if !p.collect(tok) {
			return nil
		}
		return p.openPart(p.takeLine())

	case stateSkipHeaders:
		switch tok.kind {
		case tokenBlank:
			p.st = p.after
		case tokenBoundary:
			if err := p.endPart(); err != nil {
				return err
			}
			p.st = stateHeader
		}

	case stateFileBody:
		if tok.kind == tokenBlank || tok.kind == tokenBoundary {
			if err := p.commitFile(); err != nil {
				return err
			}
			p.st = stateSeekBoundary
			if tok.kind == tokenBoundary {
				p.st = stateHeader
			}
			return nil
		}
		return p.file.write(tok.text, !tok.more)

	case stateFieldValue:
		if tok.kind == tokenBoundary {
			p.recordField("")
			p.st = stateHeader
			return nil
		}
		if !p.collect(tok) {
			return nil
		}
		p.recordField(strings.TrimSpace(string(p.takeLine())))
		p.st = stateSeekBoundary
	}

	return nil
}

// collect копит фрагменты строки и сообщает, завершена ли она.
// Всё, что длиннее readBufferSize, отбрасывается.
func (p *parser) collect(tok token) bool {
	if room := readBufferSize - len(p.line); room > 0 {
		chunk := tok.text
		if len(chunk) > room {
			chunk = chunk[:room]
		}
		p.line = append(p.line, chunk...)
	}
	return !tok.more
}

func (p *parser) takeLine() string {
	s := string(p.line)
	p.line = p.line[:0]
	return s
}

// openPart разбирает строку Content-Disposition и выбирает ветку автомата.
func (p *parser) openPart(header string) error {
	p.st = stateSkipHeaders

	if name, ok := dispositionParam(header, "filename"); ok {
		if err := p.openFile(name); err != nil {
			return err
		}
		p.after = stateFileBody
		return nil
	}

	p.field, _ = dispositionParam(header, "name")
	p.after = stateFieldValue
	return nil
}

// endPart закрывает часть, у которой не оказалось тела.
func (p *parser) endPart() error {
	if p.after == stateFieldValue {
		p.recordField("")
		return nil
	}
	return p.commitFile()
}

func (p *parser) recordField(value string) {
	name := p.field
	p.field = ""

	if _, known := p.res.Fields[name]; !known {
		p.in.logger.Warn("unexpected params received", "name", name, "value", value)
		return
	}

	p.res.Fields[name] = value
	p.res.Parts = append(p.res.Parts, models.FieldPart{Name: name, Value: value})
}

func (p *parser) openFile(declared string) error {
	if p.res.FileName != "" {
		p.in.logger.Warn("additional file part replaces previous one", "previous", p.res.FileName, "next", declared)
	}

	f, err := createPartFile(p.in.fs, p.in.dir, declared)
	if err != nil {
		return err
	}
	p.file = f
	p.in.logger.Debug("file part opened", "declared", declared, "target", f.final)

	return nil
}

// commitFile сбрасывает и закрывает открытый файл, переименовывая его в итоговое имя.
func (p *parser) commitFile() error {
	if p.file == nil {
		return nil
	}
	f := p.file
	p.file = nil

	if err := f.commit(); err != nil {
		return err
	}

	p.res.FileName = f.name
	p.res.FilePath = f.final
	p.res.Size = f.n
	p.res.ContentType = detectContentType(p.in.fs, f.final)
	p.res.Parts = append(p.res.Parts, models.FilePart{DeclaredFileName: f.declared, ByteCount: f.n})

	p.in.logger.Info("file stored",
		"path", f.final,
		"size", humanize.IBytes(uint64(f.n)),
		"content_type", p.res.ContentType,
	)
	return nil
}

// abort освобождает незакоммиченный файл на пути с ошибкой.
func (p *parser) abort() {
	if p.file == nil {
		return
	}
	p.file.discard()
	p.file = nil
}

// dispositionParam извлекает параметр key из строки Content-Disposition.
// Ключ должен стоять в начале строки или после пробела/точки с запятой,
// иначе "name" совпал бы внутри "filename".
func dispositionParam(line, key string) (string, bool) {
	needle := key + "="
	from := 0
	for {
		i := strings.Index(line[from:], needle)
		if i < 0 {
			return "", false
		}
		i += from
		if i == 0 || strings.ContainsRune(" ;\t", rune(line[i-1])) {
			return paramValue(line[i+len(needle):]), true
		}
		from = i + len(needle)
	}
}

func paramValue(rest string) string {
	if strings.HasPrefix(rest, `"`) {
		rest = rest[1:]
		if j := strings.IndexByte(rest, '"'); j >= 0 {
			return rest[:j]
		}
		return rest
	}
	if j := strings.IndexByte(rest, ';'); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}

// SafeName сводит объявленное клиентом имя к базовому имени файла.
// Пустой результат означает, что имя использовать нельзя.
func SafeName(declared string) string {
	name := strings.ReplaceAll(strings.TrimSpace(declared), `\`, "/")
	name = filepath.Base(filepath.FromSlash(name))
	switch name {
	case ".", "..", string(filepath.Separator):
		return ""
	}
	if IsTempName(name) {
		return ""
	}
	return name
}
