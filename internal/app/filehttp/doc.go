// Package filehttp реализует вспомогательный HTTP-эндпоинт ноутбука: выдачу
// сгенерированных файлов результатов и приём файла из браузера. Эндпоинты:
//   - GET {prefix}/{path} — отдаёт файл из file_dir как application/octet-stream (attachment).
//   - POST {prefix}/upload — принимает multipart/form-data, сохраняет файл в upload_dir
//     и просит сервис ноутбуков перезапустить параграф.
//   - GET /health — занятое место в каталоге загрузок.
//   - POST /admin/gc — внеочередной проход очистки каталога загрузок.
package filehttp
