package db

// This file stores the query behind every blog endpoint.
// Each query takes its path parameters as bound arguments, never as text.

// +--------------------------------------------------------------------------+
// |                                TABLE post                                |
// +--------------------------------------------------------------------------+

// SelectPostByID returns the body of one post.
const SelectPostByID = `SELECT title, content, date_created, image, author FROM post WHERE id = ?;`

// SelectAllPreviews returns every post joined with its preview, if any.
const SelectAllPreviews = `SELECT post.id, title, date_created, image, author, preview
FROM post LEFT JOIN post_preview ON post.id = post_preview.post_id
ORDER BY post.id;`

// +--------------------------------------------------------------------------+
// |                            TABLE post_preview                            |
// +--------------------------------------------------------------------------+

// SelectPreviewsByPostID returns the preview rows of one post.
const SelectPreviewsByPostID = `SELECT * FROM post_preview WHERE post_id = ?;`

// +--------------------------------------------------------------------------+
// |                          TABLES tag, post_tag                            |
// +--------------------------------------------------------------------------+

// SelectPostIDsByTagID returns the posts carrying one tag.
const SelectPostIDsByTagID = `SELECT post_id FROM post_tag WHERE tag_id = ? ORDER BY post_id;`

// SelectTagCounts returns every tag name with the number of posts using it.
// Tags nobody uses are reported with a count of zero.
const SelectTagCounts = `SELECT COUNT(post_tag.tag_id) AS tagCount, tag.name AS tag
FROM tag LEFT JOIN post_tag ON post_tag.tag_id = tag.id
GROUP BY tag.name
ORDER BY tag.name;`

// SelectTagCountsByPostID returns the tags of one post.
const SelectTagCountsByPostID = `SELECT COUNT(post_tag.tag_id) AS tag_count, tag.name
FROM post_tag LEFT JOIN tag ON post_tag.tag_id = tag.id
WHERE post_tag.post_id = ?
GROUP BY post_tag.tag_id, post_tag.post_id, tag.name
ORDER BY post_tag.tag_id;`

// +--------------------------------------------------------------------------+
// |                      TABLES category, post_category                      |
// +--------------------------------------------------------------------------+

// SelectPostIDsByCategoryID returns the posts filed under one category.
const SelectPostIDsByCategoryID = `SELECT post_id FROM post_category WHERE category_id = ? ORDER BY post_id;`

// SelectCategoryCounts returns every category with the number of posts filed under it.
const SelectCategoryCounts = `SELECT COUNT(post_category.category_id) AS categoryCount, category.category
FROM category LEFT JOIN post_category ON post_category.category_id = category.id
GROUP BY category.category
ORDER BY category.category;`

// SelectCategoriesByPostID returns the categories of one post.
const SelectCategoriesByPostID = `SELECT category.category
FROM post_category LEFT JOIN category ON category.id = post_category.category_id
WHERE post_category.post_id = ?
ORDER BY category.id;`
