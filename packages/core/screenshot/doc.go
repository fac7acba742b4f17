// Package screenshot drives the external program that renders a message and
// writes its image.
//
// The program is configured as an argv template. The placeholders
// {message_id}, {image_path} and {base_url} are substituted before it runs.
package screenshot
