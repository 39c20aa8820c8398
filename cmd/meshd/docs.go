package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           meshd API
// @version         1.0
// @description     HTTP proxy relaying images to an image-to-3D inference provider.
//
// @contact.name   meshd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
