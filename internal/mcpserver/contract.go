package mcpserver

// FrontMatterGuide documents the post format InkPress understands, so LLM
// clients can reason about slugs, categories and metadata.
const FrontMatterGuide = `# InkPress Post Format

Every post is a UTF-8 Markdown file below the content directory.

## Front-matter

YAML between ` + "`---`" + ` fences or TOML between ` + "`+++`" + ` fences, first thing in the file.

` + "```" + `markdown
---
title: Intro to Rust          # defaults to the file name
date: 2024-01-03              # YYYY-MM-DD or RFC 3339; defaults to file mtime
excerpt: Short summary        # "description" is accepted as an alias
tags: [rust, systems]         # list or comma separated string
author: Jane Doe
---

Body in GitHub flavored Markdown.
` + "```" + `

## Derived fields

- **slug**: relative path without ` + "`.md`" + `, lower-cased, ` + "`/`" + ` replaced by ` + "`-`" + `
  (` + "`tech/Rust.md`" + ` becomes ` + "`tech-rust`" + `). Collisions get ` + "`-2`" + `, ` + "`-3`" + ` suffixes.
- **category**: first directory segment; files at the root belong to ` + "`general`" + `.
- **readingTime**: words / 200, rounded up.
- **headings**: ATX headings (levels 1 to 6) with their anchor ids.

Malformed front-matter does not drop the post: the body is still indexed
with default metadata.
`
